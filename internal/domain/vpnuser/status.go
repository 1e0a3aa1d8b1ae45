package vpnuser

// Status represents the lifecycle state of a provisioned user.
type Status string

const (
	// StatusActive users serve traffic and appear in aggregates.
	StatusActive Status = "active"
	// StatusDisabled is reached when reconciliation observes the purchased
	// limit exceeded. One-way from this subsystem's point of view.
	StatusDisabled Status = "disabled"
	// StatusExpired is reached when the expiry timestamp passes.
	StatusExpired Status = "expired"
)

// IsValid checks whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDisabled, StatusExpired:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
