package reseller

// Status represents the account state of a reseller.
type Status string

const (
	// StatusActive resellers may provision and manage their users.
	StatusActive Status = "active"
	// StatusLocked resellers keep read access but cannot provision.
	// Reached when the daily fee pushes the balance negative.
	StatusLocked Status = "locked"
	// StatusSuspended resellers are fully blocked, including login.
	StatusSuspended Status = "suspended"
)

// IsValid checks whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusLocked, StatusSuspended:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
