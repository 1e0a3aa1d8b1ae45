package vpnuser

import (
	"fmt"
	"time"
)

// NodeAccount is one backend account actually created on a node for a
// VPNUser. It records the identity the backend knows the account by and the
// last usage observed by reconciliation. Deleted together with its user.
type NodeAccount struct {
	id          uint
	vpnUserID   uint
	nodeID      uint
	remoteID    string
	usedTraffic int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewNodeAccount creates a new backend account record.
func NewNodeAccount(vpnUserID, nodeID uint, remoteID string) (*NodeAccount, error) {
	if nodeID == 0 {
		return nil, fmt.Errorf("node account needs a node")
	}
	if remoteID == "" {
		return nil, fmt.Errorf("node account needs a remote identifier")
	}

	now := time.Now().UTC()
	return &NodeAccount{
		vpnUserID: vpnUserID,
		nodeID:    nodeID,
		remoteID:  remoteID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructNodeAccount reconstructs an account from persistence.
func ReconstructNodeAccount(
	id uint,
	vpnUserID, nodeID uint,
	remoteID string,
	usedTraffic int64,
	createdAt, updatedAt time.Time,
) (*NodeAccount, error) {
	if id == 0 {
		return nil, fmt.Errorf("node account ID cannot be zero")
	}

	return &NodeAccount{
		id:          id,
		vpnUserID:   vpnUserID,
		nodeID:      nodeID,
		remoteID:    remoteID,
		usedTraffic: usedTraffic,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (a *NodeAccount) ID() uint           { return a.id }
func (a *NodeAccount) VPNUserID() uint    { return a.vpnUserID }
func (a *NodeAccount) NodeID() uint       { return a.nodeID }
func (a *NodeAccount) RemoteID() string   { return a.remoteID }
func (a *NodeAccount) UsedTraffic() int64 { return a.usedTraffic }
func (a *NodeAccount) CreatedAt() time.Time {
	return a.createdAt
}

func (a *NodeAccount) UpdatedAt() time.Time {
	return a.updatedAt
}

// SetID sets the ID after persistence assigns one.
func (a *NodeAccount) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("node account ID already set")
	}
	a.id = id
	return nil
}

// SetVPNUserID links the account to its owner after the owner is persisted.
func (a *NodeAccount) SetVPNUserID(id uint) {
	a.vpnUserID = id
}

// RecordUsage stores the last-observed used-traffic counter.
func (a *NodeAccount) RecordUsage(usedBytes int64) {
	a.usedTraffic = usedBytes
	a.updatedAt = time.Now().UTC()
}
