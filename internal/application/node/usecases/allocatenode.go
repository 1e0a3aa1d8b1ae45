package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type AllocateNodeCommand struct {
	ResellerID        uint
	NodeID            uint
	CustomPricePerGB  *int64
	CustomPricePerDay *int64
}

type AllocateNodeResult struct {
	Allocation *node.Allocation
}

// AllocateNodeUseCase grants a reseller access to a node, optionally with
// pricing that overrides the reseller's base prices for this node only.
type AllocateNodeUseCase struct {
	nodeRepo       node.Repository
	resellerRepo   reseller.Repository
	allocationRepo node.AllocationRepository
	logger         logger.Interface
}

func NewAllocateNodeUseCase(
	nodeRepo node.Repository,
	resellerRepo reseller.Repository,
	allocationRepo node.AllocationRepository,
	logger logger.Interface,
) *AllocateNodeUseCase {
	return &AllocateNodeUseCase{
		nodeRepo:       nodeRepo,
		resellerRepo:   resellerRepo,
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

func (uc *AllocateNodeUseCase) Execute(ctx context.Context, cmd AllocateNodeCommand) (*AllocateNodeResult, error) {
	target, err := uc.resellerRepo.GetByID(ctx, cmd.ResellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reseller: %w", err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("reseller not found")
	}

	n, err := uc.nodeRepo.GetByID(ctx, cmd.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load node: %w", err)
	}
	if n == nil {
		return nil, errors.NewNotFoundError("node not found")
	}

	existing, err := uc.allocationRepo.Get(ctx, cmd.ResellerID, cmd.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check allocation: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("node already allocated to this reseller")
	}

	allocation, err := node.NewAllocation(cmd.ResellerID, cmd.NodeID, cmd.CustomPricePerGB, cmd.CustomPricePerDay)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.allocationRepo.Create(ctx, allocation); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("node already allocated to this reseller")
		}
		return nil, fmt.Errorf("failed to create allocation: %w", err)
	}

	uc.logger.Infow("node allocated",
		"reseller_id", cmd.ResellerID, "node_id", cmd.NodeID)
	return &AllocateNodeResult{Allocation: allocation}, nil
}
