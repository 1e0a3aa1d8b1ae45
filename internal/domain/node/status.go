package node

// Status represents the operational state of a node. It is toggled
// independently of allocation records.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
)

// IsValid checks whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusOffline:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
