package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type UpdateNodeStatusCommand struct {
	NodeID             uint
	Status             string
	VisibleInAggregate *bool // nil leaves visibility unchanged
}

type UpdateNodeStatusResult struct {
	Node *node.Node
}

// UpdateNodeStatusUseCase transitions a node's status and optionally its
// aggregate visibility. Taking a node out of active immediately removes it
// from provisioning and aggregation; existing remote accounts are left
// alone.
type UpdateNodeStatusUseCase struct {
	nodeRepo node.Repository
	logger   logger.Interface
}

func NewUpdateNodeStatusUseCase(nodeRepo node.Repository, logger logger.Interface) *UpdateNodeStatusUseCase {
	return &UpdateNodeStatusUseCase{nodeRepo: nodeRepo, logger: logger}
}

func (uc *UpdateNodeStatusUseCase) Execute(ctx context.Context, cmd UpdateNodeStatusCommand) (*UpdateNodeStatusResult, error) {
	n, err := uc.nodeRepo.GetByID(ctx, cmd.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load node: %w", err)
	}
	if n == nil {
		return nil, errors.NewNotFoundError("node not found")
	}

	if cmd.Status != "" {
		if err := n.SetStatus(node.Status(cmd.Status)); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}
	if cmd.VisibleInAggregate != nil {
		n.SetVisibleInAggregate(*cmd.VisibleInAggregate)
	}

	if err := uc.nodeRepo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}

	uc.logger.Infow("node status updated",
		"id", n.ID(), "status", n.Status(), "visible", n.VisibleInAggregate())
	return &UpdateNodeStatusResult{Node: n}, nil
}
