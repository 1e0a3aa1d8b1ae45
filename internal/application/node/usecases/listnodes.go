package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type ListNodesCommand struct {
	ActorID uint
	IsRoot  bool
}

type ListNodesResult struct {
	Nodes []*node.Node
}

// ListNodesUseCase lists nodes: root sees every node, a reseller sees the
// nodes allocated to it.
type ListNodesUseCase struct {
	nodeRepo node.Repository
	logger   logger.Interface
}

func NewListNodesUseCase(nodeRepo node.Repository, logger logger.Interface) *ListNodesUseCase {
	return &ListNodesUseCase{nodeRepo: nodeRepo, logger: logger}
}

func (uc *ListNodesUseCase) Execute(ctx context.Context, cmd ListNodesCommand) (*ListNodesResult, error) {
	var (
		nodes []*node.Node
		err   error
	)
	if cmd.IsRoot {
		nodes, err = uc.nodeRepo.ListAll(ctx)
	} else {
		nodes, err = uc.nodeRepo.ListAllocatedTo(ctx, cmd.ActorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return &ListNodesResult{Nodes: nodes}, nil
}
