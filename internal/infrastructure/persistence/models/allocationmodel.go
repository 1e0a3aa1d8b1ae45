package models

import (
	"time"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// AllocationModel is the database persistence model for node allocations.
// One row grants one reseller access to one node, optionally with custom
// pricing overriding the reseller's base prices.
type AllocationModel struct {
	ID                uint `gorm:"primarykey"`
	ResellerID        uint `gorm:"not null;uniqueIndex:idx_allocations_reseller_node"`
	NodeID            uint `gorm:"not null;uniqueIndex:idx_allocations_reseller_node;index:idx_allocations_node_id"`
	CustomPricePerGB  *int64
	CustomPricePerDay *int64
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM
func (AllocationModel) TableName() string {
	return constants.TableAllocations
}
