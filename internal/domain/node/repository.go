package node

import "context"

// Repository defines persistence operations for nodes.
type Repository interface {
	Create(ctx context.Context, n *Node) error
	GetByID(ctx context.Context, id uint) (*Node, error)
	Update(ctx context.Context, n *Node) error
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context) ([]*Node, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*Node, error)
	ListAllocatedTo(ctx context.Context, resellerID uint) ([]*Node, error)
}

// AllocationRepository defines persistence for reseller-node allocations.
type AllocationRepository interface {
	Create(ctx context.Context, a *Allocation) error
	Get(ctx context.Context, resellerID, nodeID uint) (*Allocation, error)
	ListByReseller(ctx context.Context, resellerID uint) ([]*Allocation, error)
	Delete(ctx context.Context, resellerID, nodeID uint) error
}
