package usecases

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/id"
	"github.com/guardino-io/guardino/internal/shared/logger"
	"github.com/guardino-io/guardino/internal/shared/utils"
)

type ProvisionUserCommand struct {
	ResellerID     uint
	IsRoot         bool
	Username       string
	DataLimitGB    float64 // 0 means unlimited
	DurationDays   int     // 0 means no expiry
	NodeIDs        []uint
	ProtocolConfig map[string]interface{}
}

type ProvisionUserResult struct {
	User            *vpnuser.VPNUser
	TotalCost       int64
	SubscriptionURL string
}

// ProvisionUserUseCase creates one VPN user across the requested nodes.
//
// The whole operation runs in a single transaction holding an exclusive row
// lock on the reseller: reserve funds, create all remote accounts in
// parallel, then commit user, debit, and ledger entry together. Any remote
// failure rolls everything back after compensating deletes; a compensation
// delete that itself fails is persisted as a cleanup task outside the
// transaction so it survives the rollback.
type ProvisionUserUseCase struct {
	resellerRepo   reseller.Repository
	ledgerRepo     reseller.LedgerRepository
	vpnUserRepo    vpnuser.Repository
	nodeRepo       node.Repository
	allocationRepo node.AllocationRepository
	cleanupRepo    vpnuser.CleanupTaskRepository
	adapters       node.AdapterRegistry
	txManager      TransactionManager
	subBaseURL     string
	logger         logger.Interface
}

func NewProvisionUserUseCase(
	resellerRepo reseller.Repository,
	ledgerRepo reseller.LedgerRepository,
	vpnUserRepo vpnuser.Repository,
	nodeRepo node.Repository,
	allocationRepo node.AllocationRepository,
	cleanupRepo vpnuser.CleanupTaskRepository,
	adapters node.AdapterRegistry,
	txManager TransactionManager,
	subBaseURL string,
	logger logger.Interface,
) *ProvisionUserUseCase {
	return &ProvisionUserUseCase{
		resellerRepo:   resellerRepo,
		ledgerRepo:     ledgerRepo,
		vpnUserRepo:    vpnUserRepo,
		nodeRepo:       nodeRepo,
		allocationRepo: allocationRepo,
		cleanupRepo:    cleanupRepo,
		adapters:       adapters,
		txManager:      txManager,
		subBaseURL:     subBaseURL,
		logger:         logger,
	}
}

// provisionTarget pairs a node with the allocation pricing that applies.
type provisionTarget struct {
	node       *node.Node
	allocation *node.Allocation
}

// createdAccount records one successful remote create, for commit or
// compensation.
type createdAccount struct {
	node     *node.Node
	remoteID string
}

func (uc *ProvisionUserUseCase) Execute(ctx context.Context, cmd ProvisionUserCommand) (*ProvisionUserResult, error) {
	if cmd.Username == "" {
		return nil, errors.NewValidationError("username is required")
	}
	if len(cmd.NodeIDs) == 0 {
		return nil, errors.NewValidationError("at least one node is required")
	}
	if cmd.DataLimitGB < 0 || cmd.DurationDays < 0 {
		return nil, errors.NewValidationError("data limit and duration must not be negative")
	}

	exists, err := uc.vpnUserRepo.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("username already exists")
	}

	targets, err := uc.resolveTargets(ctx, cmd.ResellerID, cmd.IsRoot, cmd.NodeIDs)
	if err != nil {
		return nil, err
	}

	// baseCtx deliberately lacks the transaction: cleanup tasks recorded on
	// it must survive the rollback that follows a failed saga.
	baseCtx := ctx

	var result *ProvisionUserResult
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		owner, err := uc.resellerRepo.GetByIDForUpdate(txCtx, cmd.ResellerID)
		if err != nil {
			return fmt.Errorf("failed to lock reseller: %w", err)
		}
		if owner == nil {
			return errors.NewNotFoundError("reseller not found")
		}
		if !owner.IsActive() {
			return errors.NewForbiddenError("reseller is not active")
		}

		totalCost := uc.totalCost(owner, targets, cmd.DataLimitGB, cmd.DurationDays)
		if err := owner.Debit(totalCost); err != nil {
			return errors.NewInsufficientFundsError("insufficient balance",
				fmt.Sprintf("balance %d, required %d", owner.Balance(), totalCost))
		}

		created, err := uc.createRemoteAccounts(txCtx, cmd, targets)
		if err != nil {
			uc.compensate(baseCtx, created, cmd.Username)
			return err
		}

		user, err := uc.buildUser(cmd, owner.ID(), totalCost, created)
		if err != nil {
			uc.compensate(baseCtx, created, cmd.Username)
			return err
		}

		if err := uc.vpnUserRepo.Create(txCtx, user); err != nil {
			uc.compensate(baseCtx, created, cmd.Username)
			if errors.IsDuplicateError(err) {
				return errors.NewConflictError("username already exists")
			}
			return fmt.Errorf("failed to persist vpn user: %w", err)
		}
		if err := uc.resellerRepo.Update(txCtx, owner); err != nil {
			uc.compensate(baseCtx, created, cmd.Username)
			return fmt.Errorf("failed to persist reseller balance: %w", err)
		}

		entry, err := reseller.NewLedgerEntry(owner.ID(), -totalCost, reseller.EntryKindPurchase,
			fmt.Sprintf("provision user %s on %d nodes", cmd.Username, len(created)))
		if err != nil {
			uc.compensate(baseCtx, created, cmd.Username)
			return fmt.Errorf("failed to build ledger entry: %w", err)
		}
		if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
			uc.compensate(baseCtx, created, cmd.Username)
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		result = &ProvisionUserResult{
			User:            user,
			TotalCost:       totalCost,
			SubscriptionURL: uc.subBaseURL + "/sub/" + user.SubToken(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("vpn user provisioned",
		"username", cmd.Username,
		"reseller_id", cmd.ResellerID,
		"nodes", len(targets),
		"total_cost", result.TotalCost)
	return result, nil
}

// resolveTargets loads the requested nodes and verifies the reseller holds
// an allocation for every one of them and that each node is active. Root
// needs no allocation; a missing one then prices at the base rates.
func (uc *ProvisionUserUseCase) resolveTargets(ctx context.Context, resellerID uint, isRoot bool, nodeIDs []uint) ([]provisionTarget, error) {
	nodes, err := uc.nodeRepo.ListByIDs(ctx, nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	byID := make(map[uint]*node.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = n
	}

	targets := make([]provisionTarget, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		n, ok := byID[nodeID]
		if !ok {
			return nil, errors.NewNotFoundError(fmt.Sprintf("node %d not found", nodeID))
		}
		if !n.IsActive() {
			return nil, errors.NewValidationError(fmt.Sprintf("node %s is not active", n.Name()))
		}

		alloc, err := uc.allocationRepo.Get(ctx, resellerID, nodeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load allocation: %w", err)
		}
		if alloc == nil && !isRoot {
			return nil, errors.NewForbiddenError(fmt.Sprintf("node %s is not allocated to you", n.Name()))
		}
		targets = append(targets, provisionTarget{node: n, allocation: alloc})
	}
	return targets, nil
}

// totalCost prices the purchase per node and sums, truncating the GB
// component per node before adding the per-day component.
func (uc *ProvisionUserUseCase) totalCost(owner *reseller.Reseller, targets []provisionTarget, gb float64, days int) int64 {
	var total int64
	for _, t := range targets {
		perGB := owner.PriceMasterSub()
		var perDay int64
		if t.allocation != nil {
			perGB = t.allocation.PricePerGB(owner.PriceMasterSub())
			perDay = t.allocation.PricePerDay()
		}
		total += utils.FloatToInt64(gb*float64(perGB)) + int64(days)*perDay
	}
	return total
}

// createRemoteAccounts fans out one CreateAccount per node and waits for
// all of them, failures included. Cancelling in-flight creates would leave
// accounts that landed on their panel unknown to the compensator, so every
// node's outcome is collected before the error is evaluated.
func (uc *ProvisionUserUseCase) createRemoteAccounts(ctx context.Context, cmd ProvisionUserCommand, targets []provisionTarget) ([]createdAccount, error) {
	results := make([]createdAccount, len(targets))
	var g errgroup.Group
	for i, t := range targets {
		input := node.CreateAccountInput{
			Username:       cmd.Username,
			QuotaBytes:     utils.GBToBytes(cmd.DataLimitGB),
			ExpiryEpoch:    expiryEpoch(cmd.DurationDays),
			ProtocolConfig: mergeProtocolConfig(t.node.Settings(), cmd.ProtocolConfig),
		}
		g.Go(func() error {
			adapter, err := uc.adapters.Resolve(t.node)
			if err != nil {
				return err
			}
			remoteID, err := adapter.CreateAccount(ctx, input)
			if err != nil {
				uc.logger.Errorw("remote account creation failed",
					"node_id", t.node.ID(), "username", cmd.Username, "error", err)
				return err
			}
			results[i] = createdAccount{node: t.node, remoteID: remoteID}
			return nil
		})
	}

	err := g.Wait()
	created := make([]createdAccount, 0, len(results))
	for _, r := range results {
		if r.remoteID != "" {
			created = append(created, r)
		}
	}
	if err != nil {
		return created, err
	}
	return created, nil
}

// compensate deletes the remote accounts created before a saga failure.
// Deletes that fail are persisted as cleanup tasks for the retry job; the
// saga outcome is unaffected either way.
func (uc *ProvisionUserUseCase) compensate(ctx context.Context, created []createdAccount, username string) {
	for _, c := range created {
		adapter, err := uc.adapters.Resolve(c.node)
		if err == nil {
			err = adapter.DeleteAccount(ctx, c.remoteID)
		}
		if err == nil {
			continue
		}

		uc.logger.Errorw("compensation delete failed, recording cleanup task",
			"node_id", c.node.ID(), "remote_id", c.remoteID, "error", err)
		task, taskErr := vpnuser.NewCleanupTask(c.node.ID(), c.remoteID,
			fmt.Sprintf("compensation for failed provisioning of %s", username))
		if taskErr != nil {
			uc.logger.Errorw("failed to build cleanup task", "error", taskErr)
			continue
		}
		if taskErr := uc.cleanupRepo.Create(ctx, task); taskErr != nil {
			uc.logger.Errorw("failed to persist cleanup task",
				"node_id", c.node.ID(), "remote_id", c.remoteID, "error", taskErr)
		}
	}
}

func (uc *ProvisionUserUseCase) buildUser(cmd ProvisionUserCommand, resellerID uint, totalCost int64, created []createdAccount) (*vpnuser.VPNUser, error) {
	var expireAt *time.Time
	if cmd.DurationDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, cmd.DurationDays)
		expireAt = &t
	}

	token, err := id.NewSubscriptionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription token: %w", err)
	}

	user, err := vpnuser.NewVPNUser(
		resellerID,
		cmd.Username,
		utils.GBToBytes(cmd.DataLimitGB),
		expireAt,
		totalCost,
		token,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	for _, c := range created {
		account, err := vpnuser.NewNodeAccount(0, c.node.ID(), c.remoteID)
		if err != nil {
			return nil, fmt.Errorf("failed to build node account: %w", err)
		}
		user.AttachAccount(account)
	}
	return user, nil
}

// mergeProtocolConfig overlays the caller's per-request settings on the
// node's stored defaults. Request keys win.
func mergeProtocolConfig(nodeDefaults, requested map[string]interface{}) map[string]interface{} {
	if len(nodeDefaults) == 0 {
		return requested
	}
	merged := make(map[string]interface{}, len(nodeDefaults)+len(requested))
	for k, v := range nodeDefaults {
		merged[k] = v
	}
	for k, v := range requested {
		merged[k] = v
	}
	return merged
}

func expiryEpoch(durationDays int) int64 {
	if durationDays <= 0 {
		return 0
	}
	return time.Now().UTC().AddDate(0, 0, durationDays).Unix()
}
