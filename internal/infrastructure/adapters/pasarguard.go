package adapters

import (
	"context"
	"net/http"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

var pasarguardDefaultProxySettings = map[string]interface{}{
	"vless": map[string]interface{}{},
}

// PasarguardAdapter speaks the Pasarguard panel API. Unlike Marzban the API
// lives directly under /api on the panel root, accounts carry an explicit
// proxy_settings section, and credential exchange uses the same
// /api/admin/token endpoint shape.
type PasarguardAdapter struct {
	client *panelClient
	logger logger.Interface
}

// NewPasarguardAdapter creates an adapter bound to one Pasarguard node.
func NewPasarguardAdapter(n *node.Node, httpClient *http.Client, log logger.Interface) *PasarguardAdapter {
	return &PasarguardAdapter{
		client: newPanelClient(n.APIURL(), n.Credential(), "/api/admin/token", httpClient, log),
		logger: log,
	}
}

func (a *PasarguardAdapter) CreateAccount(ctx context.Context, input node.CreateAccountInput) (string, error) {
	payload := map[string]interface{}{
		"username":       input.Username,
		"proxy_settings": pasarguardDefaultProxySettings,
		"data_limit":     input.QuotaBytes,
		"expire":         input.ExpiryEpoch,
		"status":         "active",
	}
	if settings, ok := input.ProtocolConfig["proxy_settings"]; ok {
		payload["proxy_settings"] = settings
	}

	result, err := a.client.do(ctx, http.MethodPost, "/api/user", payload)
	if err != nil {
		return "", err
	}
	if name := stringField(result, "username"); name != "" {
		return name, nil
	}
	return input.Username, nil
}

func (a *PasarguardAdapter) FetchAccount(ctx context.Context, remoteID string) (*node.AccountUsage, error) {
	result, err := a.client.do(ctx, http.MethodGet, "/api/user/"+remoteID, nil)
	if err != nil {
		return nil, err
	}
	return &node.AccountUsage{
		UsedBytes: intField(result, "used_traffic"),
		Raw:       result,
	}, nil
}

func (a *PasarguardAdapter) ModifyAccount(ctx context.Context, remoteID string, quotaBytes, expiryEpoch int64) error {
	payload := map[string]interface{}{
		"data_limit": quotaBytes,
		"expire":     expiryEpoch,
	}
	_, err := a.client.do(ctx, http.MethodPut, "/api/user/"+remoteID, payload)
	return err
}

func (a *PasarguardAdapter) DeleteAccount(ctx context.Context, remoteID string) error {
	_, err := a.client.do(ctx, http.MethodDelete, "/api/user/"+remoteID, nil)
	if err != nil && errors.IsNotFoundError(err) {
		return nil
	}
	return err
}

func (a *PasarguardAdapter) SuspendAccount(ctx context.Context, remoteID string) error {
	payload := map[string]interface{}{"status": "disabled"}
	_, err := a.client.do(ctx, http.MethodPut, "/api/user/"+remoteID, payload)
	return err
}

func (a *PasarguardAdapter) SubscriptionURI(ctx context.Context, remoteID string) (string, error) {
	result, err := a.client.do(ctx, http.MethodGet, "/api/user/"+remoteID, nil)
	if err != nil {
		return "", err
	}
	return stringField(result, "subscription_url"), nil
}

func (a *PasarguardAdapter) TestConnectivity(ctx context.Context) error {
	_, err := a.client.do(ctx, http.MethodGet, "/api/system", nil)
	if err != nil && errors.IsNotFoundError(err) {
		return nil
	}
	return err
}
