// Package usecases implements the aggregate subscription endpoint: one
// token fans out to every panel the user lives on and merges the results
// into a single base64 payload.
package usecases

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// PayloadCache caches merged payloads per token.
type PayloadCache interface {
	Get(ctx context.Context, token string) (string, bool, error)
	Set(ctx context.Context, token, payload string) error
	Invalidate(ctx context.Context, token string) error
}

// Placeholder configs returned instead of an empty body so VPN clients show
// a meaningful entry rather than erroring out.
const (
	suspendedPlaceholder = "vless://00000000-0000-0000-0000-000000000000@127.0.0.1:80?security=none&type=tcp#❌_Account_Suspended_or_Expired"
	noNodesPlaceholder   = "vless://00000000-0000-0000-0000-000000000000@127.0.0.1:80?security=none&type=tcp#⚠️_No_Active_Nodes_Available"
)

type AggregateSubscriptionCommand struct {
	Token     string
	UserAgent string
}

type AggregateSubscriptionResult struct {
	// Payload is the base64 body to serve as text/plain.
	Payload string
}

// AggregateSubscriptionUseCase merges the per-node subscription payloads of
// one user into a single base64 document.
type AggregateSubscriptionUseCase struct {
	vpnUserRepo  vpnuser.Repository
	nodeRepo     node.Repository
	adapters     node.AdapterRegistry
	payloadCache PayloadCache
	httpClient   *http.Client
	fetchTimeout time.Duration
	logger       logger.Interface
}

func NewAggregateSubscriptionUseCase(
	vpnUserRepo vpnuser.Repository,
	nodeRepo node.Repository,
	adapters node.AdapterRegistry,
	payloadCache PayloadCache,
	fetchTimeout time.Duration,
	logger logger.Interface,
) *AggregateSubscriptionUseCase {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &AggregateSubscriptionUseCase{
		vpnUserRepo:  vpnUserRepo,
		nodeRepo:     nodeRepo,
		adapters:     adapters,
		payloadCache: payloadCache,
		httpClient:   &http.Client{Timeout: fetchTimeout},
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

func (uc *AggregateSubscriptionUseCase) Execute(ctx context.Context, cmd AggregateSubscriptionCommand) (*AggregateSubscriptionResult, error) {
	if cmd.Token == "" {
		return nil, errors.NewNotFoundError("subscription not found")
	}

	user, err := uc.vpnUserRepo.GetBySubToken(ctx, cmd.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription token: %w", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("subscription not found")
	}

	if !user.IsActive() {
		return &AggregateSubscriptionResult{Payload: encode(suspendedPlaceholder)}, nil
	}

	if payload, hit, _ := uc.payloadCache.Get(ctx, cmd.Token); hit {
		return &AggregateSubscriptionResult{Payload: payload}, nil
	}

	contributions := uc.fetchContributions(ctx, user, cmd.UserAgent)

	merged := mergeContributions(contributions)
	var payload string
	if merged == "" {
		payload = encode(noNodesPlaceholder)
	} else {
		payload = encode(merged)
	}

	if err := uc.payloadCache.Set(ctx, cmd.Token, payload); err != nil {
		uc.logger.Debugw("failed to cache subscription payload", "error", err)
	}
	return &AggregateSubscriptionResult{Payload: payload}, nil
}

// fetchContributions fans out one fetch per account, in account order. A
// node that is inactive, hidden from aggregates, or failing contributes an
// empty string.
func (uc *AggregateSubscriptionUseCase) fetchContributions(ctx context.Context, user *vpnuser.VPNUser, userAgent string) []string {
	accounts := user.Accounts()
	contributions := make([]string, len(accounts))

	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contributions[i] = uc.fetchOne(ctx, account, userAgent)
		}()
	}
	wg.Wait()
	return contributions
}

func (uc *AggregateSubscriptionUseCase) fetchOne(ctx context.Context, account *vpnuser.NodeAccount, userAgent string) string {
	n, err := uc.nodeRepo.GetByID(ctx, account.NodeID())
	if err != nil || n == nil {
		return ""
	}
	if !n.IsActive() || !n.VisibleInAggregate() {
		return ""
	}

	adapter, err := uc.adapters.Resolve(n)
	if err != nil {
		return ""
	}
	uri, err := adapter.SubscriptionURI(ctx, account.RemoteID())
	if err != nil || uri == "" {
		if err != nil {
			uc.logger.Warnw("subscription URI lookup failed",
				"node_id", n.ID(), "remote_id", account.RemoteID(), "error", err)
		}
		return ""
	}

	body, err := uc.download(ctx, uri, userAgent)
	if err != nil {
		uc.logger.Warnw("subscription payload fetch failed",
			"node_id", n.ID(), "error", err)
		return ""
	}
	return decodePayload(body)
}

func (uc *AggregateSubscriptionUseCase) download(ctx context.Context, uri, userAgent string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, uc.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// decodePayload turns a fetched body into raw configuration lines. Panels
// serve base64 with or without padding; WireGuard configs come through as
// plain text and are used as-is.
func decodePayload(body string) string {
	if body == "" {
		return ""
	}

	padded := body
	if n := len(padded) % 4; n != 0 {
		padded += strings.Repeat("=", 4-n)
	}
	raw, err := base64.StdEncoding.DecodeString(padded)
	if err != nil {
		return body
	}
	return strings.TrimSpace(string(raw))
}

// mergeContributions newline-joins the non-empty contributions, preserving
// account order.
func mergeContributions(contributions []string) string {
	nonEmpty := make([]string, 0, len(contributions))
	for _, c := range contributions {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

func encode(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
