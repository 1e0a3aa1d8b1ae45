package vpnuser

import "context"

// Repository defines persistence operations for provisioned users. Reads
// that need the per-node accounts load them eagerly.
type Repository interface {
	// Create persists the user and all attached accounts atomically.
	Create(ctx context.Context, u *VPNUser) error
	GetByID(ctx context.Context, id uint) (*VPNUser, error)
	GetByUsername(ctx context.Context, username string) (*VPNUser, error)
	GetBySubToken(ctx context.Context, token string) (*VPNUser, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, u *VPNUser) error
	UpdateAccountUsage(ctx context.Context, accountID uint, usedBytes int64) error
	// Delete removes the user and cascade-deletes its accounts.
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context) ([]*VPNUser, error)
}

// CleanupTaskRepository defines persistence for compensation cleanup tasks.
type CleanupTaskRepository interface {
	Create(ctx context.Context, t *CleanupTask) error
	Update(ctx context.Context, t *CleanupTask) error
	ListPending(ctx context.Context, limit int) ([]*CleanupTask, error)
}
