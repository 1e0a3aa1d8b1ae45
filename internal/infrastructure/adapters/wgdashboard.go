package adapters

import (
	"context"
	"net/http"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// WGDashboardAdapter speaks the WGDashboard API. WireGuard peers have no
// server-side quota or expiry, so those inputs are accepted and dropped, and
// the subscription URI is a direct configuration download rather than a
// proxy link. Enforcement for these accounts happens in reconciliation.
type WGDashboardAdapter struct {
	client  *panelClient
	baseURL string
	logger  logger.Interface
}

// NewWGDashboardAdapter creates an adapter bound to one WGDashboard node.
// WGDashboard only supports static API keys, never credential pairs.
func NewWGDashboardAdapter(n *node.Node, httpClient *http.Client, log logger.Interface) *WGDashboardAdapter {
	return &WGDashboardAdapter{
		client:  newPanelClient(n.APIURL(), n.Credential(), "", httpClient, log),
		baseURL: n.APIURL(),
		logger:  log,
	}
}

func (a *WGDashboardAdapter) CreateAccount(ctx context.Context, input node.CreateAccountInput) (string, error) {
	payload := map[string]interface{}{
		"name":         input.Username,
		"allocate_ips": true,
	}

	result, err := a.client.do(ctx, http.MethodPost, "/api/wireguard/client", payload)
	if err != nil {
		return "", err
	}
	if id := stringField(result, "id"); id != "" {
		return id, nil
	}
	return input.Username, nil
}

// FetchAccount reports zero consumed traffic: WGDashboard exposes transfer
// counters per peer session, not a monotonic total the ledger could bill.
func (a *WGDashboardAdapter) FetchAccount(ctx context.Context, remoteID string) (*node.AccountUsage, error) {
	result, err := a.client.do(ctx, http.MethodGet, "/api/wireguard/client/"+remoteID, nil)
	if err != nil {
		return nil, err
	}
	return &node.AccountUsage{UsedBytes: 0, Raw: result}, nil
}

// ModifyAccount is a no-op: peers carry no quota or expiry to update.
func (a *WGDashboardAdapter) ModifyAccount(ctx context.Context, remoteID string, quotaBytes, expiryEpoch int64) error {
	return nil
}

func (a *WGDashboardAdapter) DeleteAccount(ctx context.Context, remoteID string) error {
	_, err := a.client.do(ctx, http.MethodDelete, "/api/wireguard/client/"+remoteID, nil)
	if err != nil && errors.IsNotFoundError(err) {
		return nil
	}
	return err
}

func (a *WGDashboardAdapter) SuspendAccount(ctx context.Context, remoteID string) error {
	payload := map[string]interface{}{"enabled": false}
	_, err := a.client.do(ctx, http.MethodPut, "/api/wireguard/client/"+remoteID+"/status", payload)
	return err
}

// SubscriptionURI returns the direct WireGuard configuration download for
// the peer. No remote call is needed, the URL shape is fixed.
func (a *WGDashboardAdapter) SubscriptionURI(ctx context.Context, remoteID string) (string, error) {
	return a.baseURL + "/api/wireguard/client/" + remoteID + "/configuration", nil
}

func (a *WGDashboardAdapter) TestConnectivity(ctx context.Context) error {
	_, err := a.client.do(ctx, http.MethodGet, "/api/wireguard/client", nil)
	if err != nil && errors.IsNotFoundError(err) {
		return nil
	}
	return err
}
