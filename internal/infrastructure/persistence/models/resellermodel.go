package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// ResellerModel is the database persistence model for resellers.
// This is the anti-corruption layer between domain and database.
type ResellerModel struct {
	ID             uint   `gorm:"primarykey"`
	Username       string `gorm:"uniqueIndex;not null;size:64"`
	PasswordHash   string `gorm:"not null;size:255"`
	Balance        int64  `gorm:"not null;default:0"`
	PricePerGB     int64  `gorm:"not null;default:0"`
	PriceMasterSub int64  `gorm:"not null;default:0"`
	DailyFee       int64  `gorm:"not null;default:0"`
	ParentID       *uint  `gorm:"index:idx_resellers_parent_id"`
	CanCreateSub   bool   `gorm:"not null;default:false"`
	Status         string `gorm:"not null;default:active;size:20"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (ResellerModel) TableName() string {
	return constants.TableResellers
}

// BeforeCreate hook for GORM
func (m *ResellerModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = "active"
	}
	return nil
}
