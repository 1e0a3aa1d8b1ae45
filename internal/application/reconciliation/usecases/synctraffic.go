// Package usecases implements the periodic reconciliation jobs: traffic
// sync and limit enforcement, daily fee debits, and cleanup retries.
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type SyncTrafficResult struct {
	UsersChecked  int
	UsersDisabled int
	UsersExpired  int
}

// PayloadInvalidator drops a cached subscription payload when the sweep
// changes a user's status, so clients do not keep serving stale configs
// until the cache TTL runs out.
type PayloadInvalidator interface {
	Invalidate(ctx context.Context, token string) error
}

// SyncTrafficUseCase reconciles local usage counters with the panels and
// enforces purchased limits and expiry. Per-user and per-node failures are
// logged and skipped; the sweep always visits every active user.
type SyncTrafficUseCase struct {
	vpnUserRepo  vpnuser.Repository
	nodeRepo     node.Repository
	adapters     node.AdapterRegistry
	payloadCache PayloadInvalidator
	logger       logger.Interface
}

func NewSyncTrafficUseCase(
	vpnUserRepo vpnuser.Repository,
	nodeRepo node.Repository,
	adapters node.AdapterRegistry,
	payloadCache PayloadInvalidator,
	logger logger.Interface,
) *SyncTrafficUseCase {
	return &SyncTrafficUseCase{
		vpnUserRepo:  vpnUserRepo,
		nodeRepo:     nodeRepo,
		adapters:     adapters,
		payloadCache: payloadCache,
		logger:       logger,
	}
}

func (uc *SyncTrafficUseCase) Execute(ctx context.Context) (*SyncTrafficResult, error) {
	users, err := uc.vpnUserRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	nodes, err := uc.nodeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	nodesByID := make(map[uint]*node.Node, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID()] = n
	}

	result := &SyncTrafficResult{UsersChecked: len(users)}
	now := time.Now().UTC()

	for _, user := range users {
		if err := uc.syncUser(ctx, user, nodesByID, now, result); err != nil {
			uc.logger.Errorw("failed to reconcile user",
				"username", user.Username(), "error", err)
		}
	}

	uc.logger.Infow("traffic reconciliation finished",
		"checked", result.UsersChecked,
		"disabled", result.UsersDisabled,
		"expired", result.UsersExpired)
	return result, nil
}

func (uc *SyncTrafficUseCase) syncUser(ctx context.Context, user *vpnuser.VPNUser, nodesByID map[uint]*node.Node, now time.Time, result *SyncTrafficResult) error {
	if user.IsExpiredAt(now) {
		user.Expire()
		if err := uc.vpnUserRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to persist expiry: %w", err)
		}
		uc.suspendEverywhere(ctx, user, nodesByID)
		uc.invalidatePayload(ctx, user)
		result.UsersExpired++
		return nil
	}

	total := uc.refreshUsage(ctx, user, nodesByID)

	if user.ExceedsLimit(total) {
		user.Disable()
		if err := uc.vpnUserRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to persist disable: %w", err)
		}
		uc.suspendEverywhere(ctx, user, nodesByID)
		uc.invalidatePayload(ctx, user)
		result.UsersDisabled++
		uc.logger.Infow("user disabled for exceeding limit",
			"username", user.Username(), "used", total, "limit", user.DataLimit())
	}
	return nil
}

func (uc *SyncTrafficUseCase) invalidatePayload(ctx context.Context, user *vpnuser.VPNUser) {
	if err := uc.payloadCache.Invalidate(ctx, user.SubToken()); err != nil {
		uc.logger.Warnw("failed to invalidate subscription payload",
			"username", user.Username(), "error", err)
	}
}

// refreshUsage fetches current usage per account in parallel, persists what
// it learns, and returns the summed total. Accounts on inactive nodes or
// with failed fetches contribute their last-known counter.
func (uc *SyncTrafficUseCase) refreshUsage(ctx context.Context, user *vpnuser.VPNUser, nodesByID map[uint]*node.Node) int64 {
	accounts := user.Accounts()
	fetched := make([]int64, len(accounts))

	var wg sync.WaitGroup
	for i, account := range accounts {
		fetched[i] = account.UsedTraffic()

		n, ok := nodesByID[account.NodeID()]
		if !ok || !n.IsActive() {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			adapter, err := uc.adapters.Resolve(n)
			if err != nil {
				uc.logger.Warnw("adapter resolution failed", "node_id", n.ID(), "error", err)
				return
			}
			usage, err := adapter.FetchAccount(ctx, account.RemoteID())
			if err != nil {
				uc.logger.Warnw("usage fetch failed",
					"node_id", n.ID(), "remote_id", account.RemoteID(), "error", err)
				return
			}

			fetched[i] = usage.UsedBytes
			account.RecordUsage(usage.UsedBytes)
			if err := uc.vpnUserRepo.UpdateAccountUsage(ctx, account.ID(), usage.UsedBytes); err != nil {
				uc.logger.Warnw("failed to persist account usage",
					"account_id", account.ID(), "error", err)
			}
		}()
	}
	wg.Wait()

	var total int64
	for _, v := range fetched {
		total += v
	}
	return total
}

// suspendEverywhere best-effort suspends the user's account on every
// active node. Failures are logged, not retried; the next sweep will find
// the user already non-active and skip it.
func (uc *SyncTrafficUseCase) suspendEverywhere(ctx context.Context, user *vpnuser.VPNUser, nodesByID map[uint]*node.Node) {
	for _, account := range user.Accounts() {
		n, ok := nodesByID[account.NodeID()]
		if !ok || !n.IsActive() {
			continue
		}

		adapter, err := uc.adapters.Resolve(n)
		if err == nil {
			err = adapter.SuspendAccount(ctx, account.RemoteID())
		}
		if err != nil {
			uc.logger.Warnw("remote suspend failed",
				"node_id", n.ID(), "remote_id", account.RemoteID(), "error", err)
		}
	}
}
