package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// VPNUserModel is the database persistence model for VPN users.
type VPNUserModel struct {
	ID         uint   `gorm:"primarykey"`
	ResellerID uint   `gorm:"not null;index:idx_vpn_users_reseller_id"`
	Username   string `gorm:"uniqueIndex;not null;size:64"`
	Status     string `gorm:"not null;default:active;size:20;index:idx_vpn_users_status"`
	DataLimit  int64  `gorm:"not null;default:0"`
	ExpireAt   *time.Time
	TotalCost  int64  `gorm:"not null;default:0"`
	SubToken   string `gorm:"uniqueIndex;not null;size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Accounts []NodeAccountModel `gorm:"foreignKey:VPNUserID"`
}

// TableName specifies the table name for GORM
func (VPNUserModel) TableName() string {
	return constants.TableVPNUsers
}

// BeforeCreate hook for GORM
func (m *VPNUserModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = "active"
	}
	return nil
}
