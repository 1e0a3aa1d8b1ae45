package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type DeleteVPNUserCommand struct {
	ResellerID uint
	IsRoot     bool
	Username   string
}

type DeleteVPNUserResult struct {
	Refunded int64
}

// DeleteVPNUserUseCase removes a VPN user: best-effort deletes on every
// node (failures become cleanup tasks), then the local records and a refund
// of the recorded purchase cost, all under the reseller lock. Users already
// disabled or expired are removed without a refund.
type DeleteVPNUserUseCase struct {
	resellerRepo reseller.Repository
	ledgerRepo   reseller.LedgerRepository
	vpnUserRepo  vpnuser.Repository
	nodeRepo     node.Repository
	cleanupRepo  vpnuser.CleanupTaskRepository
	adapters     node.AdapterRegistry
	txManager    TransactionManager
	payloadCache PayloadInvalidator
	logger       logger.Interface
}

func NewDeleteVPNUserUseCase(
	resellerRepo reseller.Repository,
	ledgerRepo reseller.LedgerRepository,
	vpnUserRepo vpnuser.Repository,
	nodeRepo node.Repository,
	cleanupRepo vpnuser.CleanupTaskRepository,
	adapters node.AdapterRegistry,
	txManager TransactionManager,
	payloadCache PayloadInvalidator,
	logger logger.Interface,
) *DeleteVPNUserUseCase {
	return &DeleteVPNUserUseCase{
		resellerRepo: resellerRepo,
		ledgerRepo:   ledgerRepo,
		vpnUserRepo:  vpnUserRepo,
		nodeRepo:     nodeRepo,
		cleanupRepo:  cleanupRepo,
		adapters:     adapters,
		txManager:    txManager,
		payloadCache: payloadCache,
		logger:       logger,
	}
}

func (uc *DeleteVPNUserUseCase) Execute(ctx context.Context, cmd DeleteVPNUserCommand) (*DeleteVPNUserResult, error) {
	user, err := uc.vpnUserRepo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load vpn user: %w", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("vpn user not found")
	}
	if !cmd.IsRoot && user.ResellerID() != cmd.ResellerID {
		return nil, errors.NewForbiddenError("vpn user belongs to another reseller")
	}

	uc.deleteRemoteAccounts(ctx, user)

	// A user past their expiry may still carry StatusActive until the next
	// reconciliation sweep; they earn no refund either way.
	refund := int64(0)
	if user.IsActive() && !user.IsExpiredAt(time.Now().UTC()) {
		refund = user.TotalCost()
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if refund > 0 {
			owner, err := uc.resellerRepo.GetByIDForUpdate(txCtx, user.ResellerID())
			if err != nil {
				return fmt.Errorf("failed to lock reseller: %w", err)
			}
			if owner == nil {
				return errors.NewNotFoundError("reseller not found")
			}

			if err := owner.Credit(refund); err != nil {
				return errors.NewValidationError(err.Error())
			}
			if err := uc.resellerRepo.Update(txCtx, owner); err != nil {
				return fmt.Errorf("failed to persist refund: %w", err)
			}

			entry, err := reseller.NewLedgerEntry(owner.ID(), refund, reseller.EntryKindRefund,
				fmt.Sprintf("refund for deleted user %s", user.Username()))
			if err != nil {
				return fmt.Errorf("failed to build ledger entry: %w", err)
			}
			if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
				return fmt.Errorf("failed to append ledger entry: %w", err)
			}
		}

		return uc.vpnUserRepo.Delete(txCtx, user.ID())
	})
	if err != nil {
		return nil, err
	}

	if err := uc.payloadCache.Invalidate(ctx, user.SubToken()); err != nil {
		uc.logger.Warnw("failed to invalidate subscription payload",
			"username", user.Username(), "error", err)
	}

	uc.logger.Infow("vpn user deleted",
		"username", user.Username(), "reseller_id", user.ResellerID(), "refunded", refund)
	return &DeleteVPNUserResult{Refunded: refund}, nil
}

// deleteRemoteAccounts issues the panel deletes before touching local
// state. A failed delete is recorded as a cleanup task and does not block
// the local deletion.
func (uc *DeleteVPNUserUseCase) deleteRemoteAccounts(ctx context.Context, user *vpnuser.VPNUser) {
	for _, account := range user.Accounts() {
		n, err := uc.nodeRepo.GetByID(ctx, account.NodeID())
		if err == nil && n == nil {
			err = fmt.Errorf("node %d not found", account.NodeID())
		}
		if err == nil {
			var adapter node.ProviderAdapter
			adapter, err = uc.adapters.Resolve(n)
			if err == nil {
				err = adapter.DeleteAccount(ctx, account.RemoteID())
			}
		}
		if err == nil {
			continue
		}

		uc.logger.Errorw("remote delete failed, recording cleanup task",
			"node_id", account.NodeID(), "remote_id", account.RemoteID(), "error", err)
		task, taskErr := vpnuser.NewCleanupTask(account.NodeID(), account.RemoteID(),
			fmt.Sprintf("teardown of deleted user %s", user.Username()))
		if taskErr != nil {
			continue
		}
		if taskErr := uc.cleanupRepo.Create(ctx, task); taskErr != nil {
			uc.logger.Errorw("failed to persist cleanup task",
				"node_id", account.NodeID(), "remote_id", account.RemoteID(), "error", taskErr)
		}
	}
}
