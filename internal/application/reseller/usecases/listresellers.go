package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type ListResellersCommand struct {
	ActorID uint
	IsRoot  bool
}

type ListResellersResult struct {
	Resellers []*reseller.Reseller
}

// ListResellersUseCase lists resellers: root sees everyone, other resellers
// see their direct children.
type ListResellersUseCase struct {
	resellerRepo reseller.Repository
	logger       logger.Interface
}

func NewListResellersUseCase(resellerRepo reseller.Repository, logger logger.Interface) *ListResellersUseCase {
	return &ListResellersUseCase{resellerRepo: resellerRepo, logger: logger}
}

func (uc *ListResellersUseCase) Execute(ctx context.Context, cmd ListResellersCommand) (*ListResellersResult, error) {
	var (
		resellers []*reseller.Reseller
		err       error
	)
	if cmd.IsRoot {
		resellers, err = uc.resellerRepo.ListAll(ctx)
	} else {
		resellers, err = uc.resellerRepo.ListByParent(ctx, cmd.ActorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list resellers: %w", err)
	}
	return &ListResellersResult{Resellers: resellers}, nil
}
