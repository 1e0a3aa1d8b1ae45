package adapters

import (
	"context"
	"net/http"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// marzbanDefaultProxies is the protocol section sent when the caller
// provides no protocol configuration.
var marzbanDefaultProxies = map[string]interface{}{
	"vless": map[string]interface{}{},
}

// MarzbanAdapter speaks the Marzban panel API. Marzban serves its API under
// an /api prefix and exchanges admin credentials at /admin/token.
type MarzbanAdapter struct {
	client *panelClient
	logger logger.Interface
}

// NewMarzbanAdapter creates an adapter bound to one Marzban node.
func NewMarzbanAdapter(n *node.Node, httpClient *http.Client, log logger.Interface) *MarzbanAdapter {
	return &MarzbanAdapter{
		client: newPanelClient(n.APIURL()+"/api", n.Credential(), "/admin/token", httpClient, log),
		logger: log,
	}
}

// CreateAccount creates the remote user. Marzban addresses users by
// username, so the username doubles as the remote identifier.
func (a *MarzbanAdapter) CreateAccount(ctx context.Context, input node.CreateAccountInput) (string, error) {
	payload := map[string]interface{}{
		"username":   input.Username,
		"proxies":    marzbanDefaultProxies,
		"data_limit": input.QuotaBytes,
		"expire":     input.ExpiryEpoch,
	}
	if proxies, ok := input.ProtocolConfig["proxies"]; ok {
		payload["proxies"] = proxies
	}
	if inbounds, ok := input.ProtocolConfig["inbounds"]; ok {
		payload["inbounds"] = inbounds
	}

	result, err := a.client.do(ctx, http.MethodPost, "/user", payload)
	if err != nil {
		return "", err
	}
	if name := stringField(result, "username"); name != "" {
		return name, nil
	}
	return input.Username, nil
}

// FetchAccount returns the remote account state, normalizing consumed
// traffic from Marzban's used_traffic counter.
func (a *MarzbanAdapter) FetchAccount(ctx context.Context, remoteID string) (*node.AccountUsage, error) {
	result, err := a.client.do(ctx, http.MethodGet, "/user/"+remoteID, nil)
	if err != nil {
		return nil, err
	}
	return &node.AccountUsage{
		UsedBytes: intField(result, "used_traffic"),
		Raw:       result,
	}, nil
}

// ModifyAccount updates the quota and expiry of the remote account.
func (a *MarzbanAdapter) ModifyAccount(ctx context.Context, remoteID string, quotaBytes, expiryEpoch int64) error {
	payload := map[string]interface{}{
		"data_limit": quotaBytes,
		"expire":     expiryEpoch,
	}
	_, err := a.client.do(ctx, http.MethodPut, "/user/"+remoteID, payload)
	return err
}

// DeleteAccount removes the remote account. A missing account is treated as
// already deleted.
func (a *MarzbanAdapter) DeleteAccount(ctx context.Context, remoteID string) error {
	_, err := a.client.do(ctx, http.MethodDelete, "/user/"+remoteID, nil)
	if err != nil && errors.IsNotFoundError(err) {
		return nil
	}
	return err
}

// SuspendAccount disables the remote account without deleting it.
func (a *MarzbanAdapter) SuspendAccount(ctx context.Context, remoteID string) error {
	payload := map[string]interface{}{"status": "disabled"}
	_, err := a.client.do(ctx, http.MethodPut, "/user/"+remoteID, payload)
	return err
}

// SubscriptionURI returns the per-account subscription link Marzban
// publishes on the user object, or empty when the panel exposes none.
func (a *MarzbanAdapter) SubscriptionURI(ctx context.Context, remoteID string) (string, error) {
	result, err := a.client.do(ctx, http.MethodGet, "/user/"+remoteID, nil)
	if err != nil {
		return "", err
	}
	return stringField(result, "subscription_url"), nil
}

// TestConnectivity verifies the panel is reachable and the stored
// credentials are accepted.
func (a *MarzbanAdapter) TestConnectivity(ctx context.Context) error {
	_, err := a.client.do(ctx, http.MethodGet, "/system", nil)
	if err != nil && errors.IsNotFoundError(err) {
		return nil
	}
	return err
}
