package reseller

import (
	"fmt"
	"time"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryKindPurchase         EntryKind = "purchase"
	EntryKindRefund           EntryKind = "refund"
	EntryKindDailyFee         EntryKind = "daily_fee"
	EntryKindWalletAdjustment EntryKind = "wallet_adjustment"
)

// IsValid checks whether the kind is one of the known values.
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindPurchase, EntryKindRefund, EntryKindDailyFee, EntryKindWalletAdjustment:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one balance delta. Entries are
// append-only: the sum of a reseller's entries always equals its current
// balance (initial balance is zero).
type LedgerEntry struct {
	id          uint
	resellerID  uint
	amount      int64
	kind        EntryKind
	description string
	createdAt   time.Time
}

// NewLedgerEntry creates a new ledger entry. Amount is signed: negative for
// purchases and fees, positive for refunds and top-ups.
func NewLedgerEntry(resellerID uint, amount int64, kind EntryKind, description string) (*LedgerEntry, error) {
	if resellerID == 0 {
		return nil, fmt.Errorf("ledger entry needs a reseller")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid ledger entry kind: %s", kind)
	}

	return &LedgerEntry{
		resellerID:  resellerID,
		amount:      amount,
		kind:        kind,
		description: description,
		createdAt:   time.Now().UTC(),
	}, nil
}

// ReconstructLedgerEntry reconstructs an entry from persistence.
func ReconstructLedgerEntry(
	id uint,
	resellerID uint,
	amount int64,
	kind EntryKind,
	description string,
	createdAt time.Time,
) (*LedgerEntry, error) {
	if id == 0 {
		return nil, fmt.Errorf("ledger entry ID cannot be zero")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid ledger entry kind: %s", kind)
	}

	return &LedgerEntry{
		id:          id,
		resellerID:  resellerID,
		amount:      amount,
		kind:        kind,
		description: description,
		createdAt:   createdAt,
	}, nil
}

func (e *LedgerEntry) ID() uint            { return e.id }
func (e *LedgerEntry) ResellerID() uint    { return e.resellerID }
func (e *LedgerEntry) Amount() int64       { return e.amount }
func (e *LedgerEntry) Kind() EntryKind     { return e.kind }
func (e *LedgerEntry) Description() string { return e.description }
func (e *LedgerEntry) CreatedAt() time.Time {
	return e.createdAt
}

// SetID sets the ID after persistence assigns one.
func (e *LedgerEntry) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("ledger entry ID already set")
	}
	e.id = id
	return nil
}
