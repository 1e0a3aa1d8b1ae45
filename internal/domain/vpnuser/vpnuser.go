// Package vpnuser holds the provisioned-user aggregate: the reseller-facing
// purchased product, its per-node backend accounts, and the cleanup records
// left behind by failed compensation deletes.
package vpnuser

import (
	"fmt"
	"time"
)

// VPNUser is the purchased product: one client-facing subscription backed by
// accounts on one or more nodes. Created only by a successful provisioning
// saga.
type VPNUser struct {
	id         uint
	resellerID uint
	username   string
	status     Status
	dataLimit  int64 // purchased bytes, 0 = unlimited
	expireAt   *time.Time
	totalCost  int64 // recorded for precise refund and audit
	subToken   string
	createdAt  time.Time
	updatedAt  time.Time
	accounts   []*NodeAccount
}

// NewVPNUser creates a new provisioned user.
func NewVPNUser(
	resellerID uint,
	username string,
	dataLimit int64,
	expireAt *time.Time,
	totalCost int64,
	subToken string,
) (*VPNUser, error) {
	if resellerID == 0 {
		return nil, fmt.Errorf("vpn user needs a reseller")
	}
	if username == "" {
		return nil, fmt.Errorf("vpn user username is required")
	}
	if dataLimit < 0 {
		return nil, fmt.Errorf("data limit cannot be negative")
	}
	if totalCost < 0 {
		return nil, fmt.Errorf("total cost cannot be negative")
	}
	if subToken == "" {
		return nil, fmt.Errorf("subscription token is required")
	}

	now := time.Now().UTC()
	return &VPNUser{
		resellerID: resellerID,
		username:   username,
		status:     StatusActive,
		dataLimit:  dataLimit,
		expireAt:   expireAt,
		totalCost:  totalCost,
		subToken:   subToken,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructVPNUser reconstructs a user from persistence.
func ReconstructVPNUser(
	id uint,
	resellerID uint,
	username string,
	status Status,
	dataLimit int64,
	expireAt *time.Time,
	totalCost int64,
	subToken string,
	createdAt, updatedAt time.Time,
	accounts []*NodeAccount,
) (*VPNUser, error) {
	if id == 0 {
		return nil, fmt.Errorf("vpn user ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid vpn user status: %s", status)
	}

	return &VPNUser{
		id:         id,
		resellerID: resellerID,
		username:   username,
		status:     status,
		dataLimit:  dataLimit,
		expireAt:   expireAt,
		totalCost:  totalCost,
		subToken:   subToken,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		accounts:   accounts,
	}, nil
}

func (u *VPNUser) ID() uint         { return u.id }
func (u *VPNUser) ResellerID() uint { return u.resellerID }
func (u *VPNUser) Username() string { return u.username }
func (u *VPNUser) Status() Status   { return u.status }
func (u *VPNUser) DataLimit() int64 { return u.dataLimit }
func (u *VPNUser) ExpireAt() *time.Time {
	return u.expireAt
}
func (u *VPNUser) TotalCost() int64     { return u.totalCost }
func (u *VPNUser) SubToken() string     { return u.subToken }
func (u *VPNUser) CreatedAt() time.Time { return u.createdAt }
func (u *VPNUser) UpdatedAt() time.Time { return u.updatedAt }

// Accounts returns the per-node backend accounts owned by this user.
func (u *VPNUser) Accounts() []*NodeAccount {
	return u.accounts
}

// SetID sets the ID after persistence assigns one.
func (u *VPNUser) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("vpn user ID already set")
	}
	if id == 0 {
		return fmt.Errorf("vpn user ID cannot be zero")
	}
	u.id = id
	return nil
}

// AttachAccount adds a backend account to the aggregate.
func (u *VPNUser) AttachAccount(a *NodeAccount) {
	u.accounts = append(u.accounts, a)
}

// IsActive reports whether the user serves traffic.
func (u *VPNUser) IsActive() bool {
	return u.status == StatusActive
}

// HasUnlimitedData reports whether the purchased limit is unbounded.
func (u *VPNUser) HasUnlimitedData() bool {
	return u.dataLimit == 0
}

// ExceedsLimit reports whether the observed total usage consumes the
// purchased limit.
func (u *VPNUser) ExceedsLimit(totalUsedBytes int64) bool {
	if u.HasUnlimitedData() {
		return false
	}
	return totalUsedBytes >= u.dataLimit
}

// IsExpiredAt reports whether the user's expiry has passed at the given time.
func (u *VPNUser) IsExpiredAt(t time.Time) bool {
	return u.expireAt != nil && !u.expireAt.After(t)
}

// Disable transitions the user to disabled (limit exceeded).
func (u *VPNUser) Disable() {
	u.status = StatusDisabled
	u.updatedAt = time.Now().UTC()
}

// Expire transitions the user to expired.
func (u *VPNUser) Expire() {
	u.status = StatusExpired
	u.updatedAt = time.Now().UTC()
}
