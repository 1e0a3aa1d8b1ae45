package handlers

import (
	"time"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
)

type ResellerDTO struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Balance        int64  `json:"balance"`
	PricePerGB     int64  `json:"price_per_gb"`
	PriceMasterSub int64  `json:"price_master_sub"`
	DailyFee       int64  `json:"daily_fee"`
	ParentID       *uint  `json:"parent_id,omitempty"`
	CanCreateSub   bool   `json:"can_create_sub"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

func toResellerDTO(r *reseller.Reseller) ResellerDTO {
	dto := ResellerDTO{
		ID:             r.ID(),
		Username:       r.Username(),
		Balance:        r.Balance(),
		PricePerGB:     r.PricePerGB(),
		PriceMasterSub: r.PriceMasterSub(),
		DailyFee:       r.DailyFee(),
		CanCreateSub:   r.CanCreateSub(),
		Status:         string(r.Status()),
		CreatedAt:      r.CreatedAt().Format(time.RFC3339),
	}
	if parentID, ok := r.Parentage().ParentID(); ok {
		dto.ParentID = &parentID
	}
	return dto
}

type LedgerEntryDTO struct {
	ID          uint   `json:"id"`
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func toLedgerEntryDTO(e *reseller.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:          e.ID(),
		Amount:      e.Amount(),
		Kind:        string(e.Kind()),
		Description: e.Description(),
		CreatedAt:   e.CreatedAt().Format(time.RFC3339),
	}
}

type NodeDTO struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	PanelType          string `json:"panel_type"`
	APIURL             string `json:"api_url"`
	Status             string `json:"status"`
	VisibleInAggregate bool   `json:"visible_in_aggregate"`
	CreatedAt          string `json:"created_at"`
}

// toNodeDTO never includes the credential; it stays server-side.
func toNodeDTO(n *node.Node) NodeDTO {
	return NodeDTO{
		ID:                 n.ID(),
		Name:               n.Name(),
		PanelType:          string(n.PanelType()),
		APIURL:             n.APIURL(),
		Status:             string(n.Status()),
		VisibleInAggregate: n.VisibleInAggregate(),
		CreatedAt:          n.CreatedAt().Format(time.RFC3339),
	}
}

type AllocationDTO struct {
	ResellerID        uint   `json:"reseller_id"`
	NodeID            uint   `json:"node_id"`
	CustomPricePerGB  *int64 `json:"custom_price_per_gb,omitempty"`
	CustomPricePerDay *int64 `json:"custom_price_per_day,omitempty"`
}

func toAllocationDTO(a *node.Allocation) AllocationDTO {
	return AllocationDTO{
		ResellerID:        a.ResellerID(),
		NodeID:            a.NodeID(),
		CustomPricePerGB:  a.CustomPricePerGB(),
		CustomPricePerDay: a.CustomPricePerDay(),
	}
}

type NodeAccountDTO struct {
	NodeID      uint   `json:"node_id"`
	RemoteID    string `json:"remote_id"`
	UsedTraffic int64  `json:"used_traffic"`
}

type VPNUserDTO struct {
	ID        uint             `json:"id"`
	Username  string           `json:"username"`
	Status    string           `json:"status"`
	DataLimit int64            `json:"data_limit"`
	ExpireAt  *string          `json:"expire_at,omitempty"`
	TotalCost int64            `json:"total_cost"`
	SubToken  string           `json:"sub_token"`
	Accounts  []NodeAccountDTO `json:"accounts"`
	CreatedAt string           `json:"created_at"`
}

func toVPNUserDTO(u *vpnuser.VPNUser) VPNUserDTO {
	dto := VPNUserDTO{
		ID:        u.ID(),
		Username:  u.Username(),
		Status:    string(u.Status()),
		DataLimit: u.DataLimit(),
		TotalCost: u.TotalCost(),
		SubToken:  u.SubToken(),
		CreatedAt: u.CreatedAt().Format(time.RFC3339),
	}
	if expireAt := u.ExpireAt(); expireAt != nil {
		formatted := expireAt.UTC().Format(time.RFC3339)
		dto.ExpireAt = &formatted
	}
	for _, a := range u.Accounts() {
		dto.Accounts = append(dto.Accounts, NodeAccountDTO{
			NodeID:      a.NodeID(),
			RemoteID:    a.RemoteID(),
			UsedTraffic: a.UsedTraffic(),
		})
	}
	return dto
}
