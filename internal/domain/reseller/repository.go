package reseller

import "context"

// Repository defines persistence operations for resellers.
type Repository interface {
	Create(ctx context.Context, r *Reseller) error
	GetByID(ctx context.Context, id uint) (*Reseller, error)
	// GetByIDForUpdate loads the reseller with an exclusive row lock.
	// Must be called inside a transaction; the lock is held until the
	// transaction ends, serializing all balance mutations per reseller.
	GetByIDForUpdate(ctx context.Context, id uint) (*Reseller, error)
	GetByUsername(ctx context.Context, username string) (*Reseller, error)
	Update(ctx context.Context, r *Reseller) error
	ListByParent(ctx context.Context, parentID uint) ([]*Reseller, error)
	ListAll(ctx context.Context) ([]*Reseller, error)
	ListWithDailyFee(ctx context.Context) ([]*Reseller, error)
}

// LedgerRepository defines persistence for the append-only ledger.
// There is deliberately no update or delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	ListByReseller(ctx context.Context, resellerID uint, limit int) ([]*LedgerEntry, error)
	SumByReseller(ctx context.Context, resellerID uint) (int64, error)
}
