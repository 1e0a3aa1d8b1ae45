package node

// PanelType identifies one of the supported provisioning backends. The set
// is closed: resolving an unknown type is a configuration error, never a
// silent default.
type PanelType string

const (
	PanelTypeMarzban     PanelType = "marzban"
	PanelTypePasarguard  PanelType = "pasarguard"
	PanelTypeWGDashboard PanelType = "wgdashboard"
)

// IsValid checks whether the panel type is one of the supported backends.
func (t PanelType) IsValid() bool {
	switch t {
	case PanelTypeMarzban, PanelTypePasarguard, PanelTypeWGDashboard:
		return true
	}
	return false
}

func (t PanelType) String() string {
	return string(t)
}

// SupportedPanelTypes lists all supported backends, e.g. for validation
// error messages.
func SupportedPanelTypes() []PanelType {
	return []PanelType{PanelTypeMarzban, PanelTypePasarguard, PanelTypeWGDashboard}
}
