package models

import (
	"time"

	"github.com/guardino-io/guardino/internal/shared/constants"
)

// LedgerEntryModel is the database persistence model for ledger entries.
// Entries are append-only: no UpdatedAt, no soft delete.
type LedgerEntryModel struct {
	ID          uint   `gorm:"primarykey"`
	ResellerID  uint   `gorm:"not null;index:idx_ledger_entries_reseller_id"`
	Amount      int64  `gorm:"not null"`
	Kind        string `gorm:"not null;size:32;index:idx_ledger_entries_kind"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (LedgerEntryModel) TableName() string {
	return constants.TableLedgerEntries
}
