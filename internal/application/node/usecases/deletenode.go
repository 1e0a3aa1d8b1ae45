package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type DeleteNodeCommand struct {
	NodeID uint
}

// DeleteNodeUseCase removes a node from the panel fleet. Accounts already
// provisioned on it stop contributing to aggregates and reconciliation;
// their remote state on the panel is the operator's to clean up.
type DeleteNodeUseCase struct {
	nodeRepo node.Repository
	logger   logger.Interface
}

func NewDeleteNodeUseCase(nodeRepo node.Repository, logger logger.Interface) *DeleteNodeUseCase {
	return &DeleteNodeUseCase{nodeRepo: nodeRepo, logger: logger}
}

func (uc *DeleteNodeUseCase) Execute(ctx context.Context, cmd DeleteNodeCommand) error {
	n, err := uc.nodeRepo.GetByID(ctx, cmd.NodeID)
	if err != nil {
		return fmt.Errorf("failed to load node: %w", err)
	}
	if n == nil {
		return errors.NewNotFoundError("node not found")
	}

	if err := uc.nodeRepo.Delete(ctx, cmd.NodeID); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	uc.logger.Infow("node removed", "id", cmd.NodeID, "name", n.Name())
	return nil
}
