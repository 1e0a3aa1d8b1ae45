package node

import (
	"fmt"
	"strings"
	"time"
)

// Node represents one externally operated provisioning backend of a known
// panel type. Nodes are created and deleted by the root administrator only.
type Node struct {
	id                 uint
	name               string
	panelType          PanelType
	apiURL             string
	credential         Credential
	settings           map[string]interface{}
	status             Status
	visibleInAggregate bool
	createdAt          time.Time
	updatedAt          time.Time
}

// NewNode creates a new node.
func NewNode(
	name string,
	panelType PanelType,
	apiURL string,
	credential Credential,
	settings map[string]interface{},
	visibleInAggregate bool,
) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("node name is required")
	}
	if !panelType.IsValid() {
		return nil, fmt.Errorf("unsupported panel type: %s", panelType)
	}
	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		return nil, fmt.Errorf("node API URL must be an http(s) endpoint")
	}

	now := time.Now().UTC()
	return &Node{
		name:               name,
		panelType:          panelType,
		apiURL:             strings.TrimRight(apiURL, "/"),
		credential:         credential,
		settings:           settings,
		status:             StatusActive,
		visibleInAggregate: visibleInAggregate,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructNode reconstructs a node from persistence.
func ReconstructNode(
	id uint,
	name string,
	panelType PanelType,
	apiURL string,
	credential Credential,
	settings map[string]interface{},
	status Status,
	visibleInAggregate bool,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id == 0 {
		return nil, fmt.Errorf("node ID cannot be zero")
	}
	if !panelType.IsValid() {
		return nil, fmt.Errorf("unsupported panel type: %s", panelType)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid node status: %s", status)
	}

	return &Node{
		id:                 id,
		name:               name,
		panelType:          panelType,
		apiURL:             strings.TrimRight(apiURL, "/"),
		credential:         credential,
		settings:           settings,
		status:             status,
		visibleInAggregate: visibleInAggregate,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (n *Node) ID() uint               { return n.id }
func (n *Node) Name() string           { return n.name }
func (n *Node) PanelType() PanelType   { return n.panelType }
func (n *Node) APIURL() string         { return n.apiURL }
func (n *Node) Credential() Credential { return n.credential }

// Settings returns the panel-specific protocol defaults applied when
// creating accounts on this node (inbounds, proxy sections and the like).
func (n *Node) Settings() map[string]interface{} {
	return n.settings
}
func (n *Node) Status() Status { return n.status }
func (n *Node) VisibleInAggregate() bool {
	return n.visibleInAggregate
}
func (n *Node) CreatedAt() time.Time { return n.createdAt }
func (n *Node) UpdatedAt() time.Time { return n.updatedAt }

// SetID sets the ID after persistence assigns one.
func (n *Node) SetID(id uint) error {
	if n.id != 0 {
		return fmt.Errorf("node ID already set")
	}
	if id == 0 {
		return fmt.Errorf("node ID cannot be zero")
	}
	n.id = id
	return nil
}

// IsActive reports whether the node accepts provisioning and aggregation.
func (n *Node) IsActive() bool {
	return n.status == StatusActive
}

// SetStatus transitions the node to the given status.
func (n *Node) SetStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid node status: %s", status)
	}
	n.status = status
	n.updatedAt = time.Now().UTC()
	return nil
}

// SetVisibleInAggregate toggles whether the node contributes to aggregate
// subscriptions ("ghost mode" when off).
func (n *Node) SetVisibleInAggregate(visible bool) {
	n.visibleInAggregate = visible
	n.updatedAt = time.Now().UTC()
}

// UpdateSettings replaces the protocol defaults.
func (n *Node) UpdateSettings(settings map[string]interface{}) {
	n.settings = settings
	n.updatedAt = time.Now().UTC()
}

// RotateCredential replaces the stored credential material.
func (n *Node) RotateCredential(credential Credential) {
	n.credential = credential
	n.updatedAt = time.Now().UTC()
}
