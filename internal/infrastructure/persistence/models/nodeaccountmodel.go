package models

import (
	"time"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// NodeAccountModel is the database persistence model for backend accounts.
type NodeAccountModel struct {
	ID          uint   `gorm:"primarykey"`
	VPNUserID   uint   `gorm:"column:vpn_user_id;not null;index:idx_node_accounts_vpn_user_id"`
	NodeID      uint   `gorm:"not null;index:idx_node_accounts_node_id"`
	RemoteID    string `gorm:"not null;size:255"`
	UsedTraffic int64  `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (NodeAccountModel) TableName() string {
	return constants.TableNodeAccounts
}
