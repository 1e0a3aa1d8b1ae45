package node

import (
	"fmt"
	"time"
)

// Allocation grants one reseller the right to provision on one node,
// optionally overriding that reseller's base prices for this pair. The root
// administrator implicitly holds an allocation to every node.
type Allocation struct {
	id                uint
	resellerID        uint
	nodeID            uint
	customPricePerGB  *int64
	customPricePerDay *int64
	createdAt         time.Time
}

// NewAllocation creates a new allocation. Nil overrides fall back to the
// reseller's base prices at pricing time.
func NewAllocation(resellerID, nodeID uint, customPricePerGB, customPricePerDay *int64) (*Allocation, error) {
	if resellerID == 0 {
		return nil, fmt.Errorf("allocation needs a reseller")
	}
	if nodeID == 0 {
		return nil, fmt.Errorf("allocation needs a node")
	}
	if customPricePerGB != nil && *customPricePerGB < 0 {
		return nil, fmt.Errorf("custom per-GB price cannot be negative")
	}
	if customPricePerDay != nil && *customPricePerDay < 0 {
		return nil, fmt.Errorf("custom per-day price cannot be negative")
	}

	return &Allocation{
		resellerID:        resellerID,
		nodeID:            nodeID,
		customPricePerGB:  customPricePerGB,
		customPricePerDay: customPricePerDay,
		createdAt:         time.Now().UTC(),
	}, nil
}

// ReconstructAllocation reconstructs an allocation from persistence.
func ReconstructAllocation(
	id uint,
	resellerID, nodeID uint,
	customPricePerGB, customPricePerDay *int64,
	createdAt time.Time,
) (*Allocation, error) {
	if id == 0 {
		return nil, fmt.Errorf("allocation ID cannot be zero")
	}

	return &Allocation{
		id:                id,
		resellerID:        resellerID,
		nodeID:            nodeID,
		customPricePerGB:  customPricePerGB,
		customPricePerDay: customPricePerDay,
		createdAt:         createdAt,
	}, nil
}

func (a *Allocation) ID() uint         { return a.id }
func (a *Allocation) ResellerID() uint { return a.resellerID }
func (a *Allocation) NodeID() uint     { return a.nodeID }
func (a *Allocation) CustomPricePerGB() *int64 {
	return a.customPricePerGB
}
func (a *Allocation) CustomPricePerDay() *int64 {
	return a.customPricePerDay
}
func (a *Allocation) CreatedAt() time.Time { return a.createdAt }

// SetID sets the ID after persistence assigns one.
func (a *Allocation) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("allocation ID already set")
	}
	a.id = id
	return nil
}

// PricePerGB resolves the effective per-GB price: the pair override if
// present, else the reseller's master-sub base price.
func (a *Allocation) PricePerGB(basePriceMasterSub int64) int64 {
	if a.customPricePerGB != nil {
		return *a.customPricePerGB
	}
	return basePriceMasterSub
}

// PricePerDay resolves the effective per-day price: the pair override if
// present, else zero.
func (a *Allocation) PricePerDay() int64 {
	if a.customPricePerDay != nil {
		return *a.customPricePerDay
	}
	return 0
}
