package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// NodeModel is the database persistence model for nodes.
type NodeModel struct {
	ID                 uint           `gorm:"primarykey"`
	Name               string         `gorm:"uniqueIndex;not null;size:100"`
	PanelType          string         `gorm:"not null;size:32"`
	APIURL             string         `gorm:"column:api_url;not null;size:500"`
	Credential         string         `gorm:"not null;size:500"`
	Settings           datatypes.JSON `gorm:"type:json"`
	Status             string         `gorm:"not null;default:active;size:20;index:idx_nodes_status"`
	VisibleInAggregate bool           `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (NodeModel) TableName() string {
	return constants.TableNodes
}

// BeforeCreate hook for GORM
func (m *NodeModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = "active"
	}
	return nil
}
