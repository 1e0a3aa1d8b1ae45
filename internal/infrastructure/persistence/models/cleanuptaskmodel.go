package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// CleanupTaskModel is the database persistence model for pending remote
// account deletions left behind by failed saga compensation.
type CleanupTaskModel struct {
	ID        uint   `gorm:"primarykey"`
	NodeID    uint   `gorm:"not null;index:idx_cleanup_tasks_node_id"`
	RemoteID  string `gorm:"not null;size:255"`
	Reason    string `gorm:"size:255"`
	Attempts  int    `gorm:"not null;default:0"`
	Status    string `gorm:"not null;default:pending;size:20;index:idx_cleanup_tasks_status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (CleanupTaskModel) TableName() string {
	return constants.TableCleanupTasks
}

// BeforeCreate hook for GORM
func (m *CleanupTaskModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = "pending"
	}
	return nil
}
