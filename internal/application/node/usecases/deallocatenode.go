package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type DeallocateNodeCommand struct {
	ResellerID uint
	NodeID     uint
}

// DeallocateNodeUseCase revokes a reseller's access to a node. Users
// already provisioned there keep their accounts; the reseller just cannot
// place new ones.
type DeallocateNodeUseCase struct {
	allocationRepo node.AllocationRepository
	logger         logger.Interface
}

func NewDeallocateNodeUseCase(allocationRepo node.AllocationRepository, logger logger.Interface) *DeallocateNodeUseCase {
	return &DeallocateNodeUseCase{allocationRepo: allocationRepo, logger: logger}
}

func (uc *DeallocateNodeUseCase) Execute(ctx context.Context, cmd DeallocateNodeCommand) error {
	existing, err := uc.allocationRepo.Get(ctx, cmd.ResellerID, cmd.NodeID)
	if err != nil {
		return fmt.Errorf("failed to check allocation: %w", err)
	}
	if existing == nil {
		return errors.NewNotFoundError("allocation not found")
	}

	if err := uc.allocationRepo.Delete(ctx, cmd.ResellerID, cmd.NodeID); err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}

	uc.logger.Infow("node deallocated",
		"reseller_id", cmd.ResellerID, "node_id", cmd.NodeID)
	return nil
}
