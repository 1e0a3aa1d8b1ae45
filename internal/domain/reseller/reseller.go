package reseller

import (
	"fmt"
	"time"
)

// Reseller represents the reseller aggregate root. Balance is kept in the
// smallest currency unit and only ever changes together with a LedgerEntry.
type Reseller struct {
	id             uint
	username       string
	passwordHash   string
	balance        int64
	pricePerGB     int64
	priceMasterSub int64
	dailyFee       int64
	parentage      Parentage
	canCreateSub   bool
	status         Status
	createdAt      time.Time
	updatedAt      time.Time
}

// NewReseller creates a new reseller under the given parentage.
// Prices are clamped by the caller (see ClampChildPrices) before this point.
func NewReseller(
	username string,
	passwordHash string,
	parentage Parentage,
	pricePerGB int64,
	priceMasterSub int64,
	dailyFee int64,
	canCreateSub bool,
) (*Reseller, error) {
	if username == "" {
		return nil, fmt.Errorf("reseller username is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("reseller password hash is required")
	}
	if pricePerGB < 0 || priceMasterSub < 0 || dailyFee < 0 {
		return nil, fmt.Errorf("prices and fees cannot be negative")
	}

	now := time.Now().UTC()
	return &Reseller{
		username:       username,
		passwordHash:   passwordHash,
		balance:        0,
		pricePerGB:     pricePerGB,
		priceMasterSub: priceMasterSub,
		dailyFee:       dailyFee,
		parentage:      parentage,
		canCreateSub:   canCreateSub,
		status:         StatusActive,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructReseller reconstructs a reseller from persistence.
func ReconstructReseller(
	id uint,
	username string,
	passwordHash string,
	balance int64,
	pricePerGB int64,
	priceMasterSub int64,
	dailyFee int64,
	parentage Parentage,
	canCreateSub bool,
	status Status,
	createdAt, updatedAt time.Time,
) (*Reseller, error) {
	if id == 0 {
		return nil, fmt.Errorf("reseller ID cannot be zero")
	}
	if username == "" {
		return nil, fmt.Errorf("reseller username is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid reseller status: %s", status)
	}

	return &Reseller{
		id:             id,
		username:       username,
		passwordHash:   passwordHash,
		balance:        balance,
		pricePerGB:     pricePerGB,
		priceMasterSub: priceMasterSub,
		dailyFee:       dailyFee,
		parentage:      parentage,
		canCreateSub:   canCreateSub,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (r *Reseller) ID() uint             { return r.id }
func (r *Reseller) Username() string     { return r.username }
func (r *Reseller) PasswordHash() string { return r.passwordHash }
func (r *Reseller) Balance() int64       { return r.balance }
func (r *Reseller) PricePerGB() int64    { return r.pricePerGB }
func (r *Reseller) PriceMasterSub() int64 {
	return r.priceMasterSub
}
func (r *Reseller) DailyFee() int64      { return r.dailyFee }
func (r *Reseller) Parentage() Parentage { return r.parentage }
func (r *Reseller) CanCreateSub() bool   { return r.canCreateSub }
func (r *Reseller) Status() Status       { return r.status }
func (r *Reseller) CreatedAt() time.Time { return r.createdAt }
func (r *Reseller) UpdatedAt() time.Time { return r.updatedAt }

// SetID sets the ID after persistence assigns one.
func (r *Reseller) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("reseller ID already set")
	}
	if id == 0 {
		return fmt.Errorf("reseller ID cannot be zero")
	}
	r.id = id
	return nil
}

// IsRoot reports whether this reseller is the root administrator.
func (r *Reseller) IsRoot() bool {
	return r.parentage.IsRoot()
}

// IsActive reports whether the reseller may provision.
func (r *Reseller) IsActive() bool {
	return r.status == StatusActive
}

// MayCreateSubReseller reports whether this reseller may create children.
func (r *Reseller) MayCreateSubReseller() bool {
	return r.parentage.IsRoot() || r.canCreateSub
}

// Debit removes amount from the balance, rejecting overdraw. Used by the
// provisioning saga after the balance row is locked.
func (r *Reseller) Debit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit amount cannot be negative")
	}
	if r.balance < amount {
		return fmt.Errorf("balance %d is less than debit amount %d", r.balance, amount)
	}
	r.balance -= amount
	r.updatedAt = time.Now().UTC()
	return nil
}

// DebitFee removes the daily fee unconditionally. The balance may go
// negative; callers lock the account when it does.
func (r *Reseller) DebitFee(amount int64) {
	r.balance -= amount
	r.updatedAt = time.Now().UTC()
}

// Credit adds amount to the balance.
func (r *Reseller) Credit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount cannot be negative")
	}
	r.balance += amount
	r.updatedAt = time.Now().UTC()
	return nil
}

// AdjustWallet applies a signed wallet adjustment made by a parent.
func (r *Reseller) AdjustWallet(amount int64) {
	r.balance += amount
	r.updatedAt = time.Now().UTC()
}

// Lock transitions the reseller to locked. Locked resellers retain read
// access but lose the ability to provision.
func (r *Reseller) Lock() {
	r.status = StatusLocked
	r.updatedAt = time.Now().UTC()
}

// Activate transitions the reseller back to active.
func (r *Reseller) Activate() {
	r.status = StatusActive
	r.updatedAt = time.Now().UTC()
}

// Suspend fully blocks the reseller.
func (r *Reseller) Suspend() {
	r.status = StatusSuspended
	r.updatedAt = time.Now().UTC()
}

// ClampChildPrices enforces the hierarchy pricing invariant: a child's
// advertised prices can never undercut this reseller's own prices.
func (r *Reseller) ClampChildPrices(requestedPerGB, requestedMasterSub int64) (perGB, masterSub int64) {
	perGB = requestedPerGB
	if perGB < r.pricePerGB {
		perGB = r.pricePerGB
	}
	masterSub = requestedMasterSub
	if masterSub < r.priceMasterSub {
		masterSub = r.priceMasterSub
	}
	return perGB, masterSub
}
