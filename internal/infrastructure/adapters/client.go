// Package adapters implements the provider adapters that normalize each
// supported panel API behind the node.ProviderAdapter contract, plus the
// registry resolving panel types to adapters.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

const (
	// maxResponseSize bounds panel API response bodies (1MB).
	maxResponseSize = 1 << 20
)

// panelClient is the HTTP plumbing shared by all adapters: request/response
// handling, the two credential modes, and the single re-exchange-and-retry
// on an authentication-expired response.
type panelClient struct {
	baseURL    string
	credential node.Credential
	httpClient *http.Client
	logger     logger.Interface

	// tokenPath is the credential-exchange endpoint, relative to baseURL.
	// Empty means the panel has no exchange endpoint and pair credentials
	// cannot be used.
	tokenPath string

	mu    sync.Mutex
	token string // cached exchanged token, pair mode only
}

func newPanelClient(baseURL string, credential node.Credential, tokenPath string, httpClient *http.Client, log logger.Interface) *panelClient {
	return &panelClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		tokenPath:  tokenPath,
		httpClient: httpClient,
		logger:     log,
	}
}

// bearerToken returns the token to present: the static credential as-is, or
// the cached exchanged token (exchanging on first use).
func (c *panelClient) bearerToken(ctx context.Context) (string, error) {
	if !c.credential.IsPair() {
		return c.credential.BearerToken(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	token, err := c.exchangeToken(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

// exchangeToken performs the credential exchange. Caller holds c.mu.
func (c *panelClient) exchangeToken(ctx context.Context) (string, error) {
	if c.tokenPath == "" {
		return "", errors.NewUpstreamAuthError("panel does not support credential-pair authentication")
	}

	username, secret := c.credential.Pair()
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.NewUpstreamError("failed to build token exchange request", err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewUpstreamAuthError("credential exchange failed", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", errors.NewUpstreamAuthError("credential exchange failed", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewUpstreamAuthError(
			fmt.Sprintf("credential exchange rejected with status %d", resp.StatusCode))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return "", errors.NewUpstreamAuthError("credential exchange returned no access token")
	}
	return payload.AccessToken, nil
}

// invalidateToken drops the cached token so the next call re-exchanges.
func (c *panelClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do issues one panel API request, decoding the JSON response into a map.
// Non-JSON bodies are wrapped as {"detail": <text>}. On a 401 with pair
// credentials, the token is re-exchanged and the request retried exactly
// once before failing.
func (c *panelClient) do(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	result, status, err := c.doOnce(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && c.credential.IsPair() {
		c.invalidateToken()
		result, status, err = c.doOnce(ctx, method, path, body)
		if err != nil {
			return nil, err
		}
	}

	if status == http.StatusNotFound {
		return nil, errors.NewNotFoundError("remote account not found")
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, errors.NewUpstreamAuthError(
			fmt.Sprintf("panel rejected credentials with status %d", status))
	}
	if status >= 400 {
		detail := ""
		if result != nil {
			if d, ok := result["detail"].(string); ok {
				detail = d
			}
		}
		return nil, errors.NewUpstreamError(
			fmt.Sprintf("panel request %s %s failed with status %d", method, path, status), detail)
	}

	return result, nil
}

func (c *panelClient) doOnce(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, errors.NewInternalError("failed to encode panel request", err.Error())
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, errors.NewUpstreamError("failed to build panel request", err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.NewUpstreamError("panel unreachable", err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, errors.NewUpstreamError("failed to read panel response", err.Error())
	}

	var result map[string]interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			// Panels occasionally answer with plain text.
			result = map[string]interface{}{"detail": string(data)}
		}
	}
	return result, resp.StatusCode, nil
}

// intField reads a numeric field from a decoded panel payload.
func intField(payload map[string]interface{}, key string) int64 {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// stringField reads a string field from a decoded panel payload.
func stringField(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
