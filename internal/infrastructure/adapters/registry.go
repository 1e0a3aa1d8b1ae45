package adapters

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/shared/config"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// cachedAdapter ties a built adapter to the node state it was built from so
// the cache invalidates when a node's URL or credential changes.
type cachedAdapter struct {
	apiURL  string
	rawCred string
	adapter node.ProviderAdapter
}

// Registry resolves nodes to provider adapters, caching one adapter per node
// so exchanged tokens survive across requests.
type Registry struct {
	httpClient *http.Client
	logger     logger.Interface

	mu    sync.Mutex
	cache map[uint]cachedAdapter
}

// NewRegistry creates an adapter registry with a shared HTTP client sized
// from the provider configuration.
func NewRegistry(cfg *config.ProviderConfig, log logger.Interface) *Registry {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	return &Registry{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		cache:      make(map[uint]cachedAdapter),
	}
}

// Resolve returns the adapter for the node's panel type, reusing a cached
// instance while the node's URL and credential are unchanged.
func (r *Registry) Resolve(n *node.Node) (node.ProviderAdapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.cache[n.ID()]; ok &&
		entry.apiURL == n.APIURL() && entry.rawCred == n.Credential().Raw() {
		return entry.adapter, nil
	}

	adapter, err := r.build(n)
	if err != nil {
		return nil, err
	}
	if n.ID() != 0 {
		r.cache[n.ID()] = cachedAdapter{
			apiURL:  n.APIURL(),
			rawCred: n.Credential().Raw(),
			adapter: adapter,
		}
	}
	return adapter, nil
}

func (r *Registry) build(n *node.Node) (node.ProviderAdapter, error) {
	switch n.PanelType() {
	case node.PanelTypeMarzban:
		return NewMarzbanAdapter(n, r.httpClient, r.logger), nil
	case node.PanelTypePasarguard:
		return NewPasarguardAdapter(n, r.httpClient, r.logger), nil
	case node.PanelTypeWGDashboard:
		return NewWGDashboardAdapter(n, r.httpClient, r.logger), nil
	default:
		return nil, errors.NewInternalError(
			fmt.Sprintf("unrecognized panel type: %s", n.PanelType()))
	}
}
