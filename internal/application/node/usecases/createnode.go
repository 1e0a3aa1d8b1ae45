// Package usecases implements node lifecycle management and allocation of
// nodes to resellers.
package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type CreateNodeCommand struct {
	Name               string
	PanelType          string
	APIURL             string
	Credential         string
	Settings           map[string]interface{}
	VisibleInAggregate bool
}

type CreateNodeResult struct {
	Node *node.Node
}

// CreateNodeUseCase registers a new panel node. The panel must be reachable
// and accept the supplied credentials before anything is persisted: an
// unreachable panel surfaces as an upstream error, rejected credentials as
// a validation failure.
type CreateNodeUseCase struct {
	nodeRepo node.Repository
	adapters node.AdapterRegistry
	logger   logger.Interface
}

func NewCreateNodeUseCase(
	nodeRepo node.Repository,
	adapters node.AdapterRegistry,
	logger logger.Interface,
) *CreateNodeUseCase {
	return &CreateNodeUseCase{
		nodeRepo: nodeRepo,
		adapters: adapters,
		logger:   logger,
	}
}

func (uc *CreateNodeUseCase) Execute(ctx context.Context, cmd CreateNodeCommand) (*CreateNodeResult, error) {
	panelType := node.PanelType(cmd.PanelType)
	if !panelType.IsValid() {
		return nil, errors.NewValidationError(
			fmt.Sprintf("unsupported panel type: %s", cmd.PanelType))
	}

	credential, err := node.NewCredential(cmd.Credential)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	n, err := node.NewNode(cmd.Name, panelType, cmd.APIURL, credential, cmd.Settings, cmd.VisibleInAggregate)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	adapter, err := uc.adapters.Resolve(n)
	if err != nil {
		return nil, err
	}
	if err := adapter.TestConnectivity(ctx); err != nil {
		if errors.IsUpstreamAuthError(err) {
			return nil, errors.NewValidationError("panel rejected the supplied credentials")
		}
		return nil, err
	}

	if err := uc.nodeRepo.Create(ctx, n); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("node name already exists")
		}
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	uc.logger.Infow("node registered",
		"id", n.ID(), "name", n.Name(), "panel_type", n.PanelType())
	return &CreateNodeResult{Node: n}, nil
}
