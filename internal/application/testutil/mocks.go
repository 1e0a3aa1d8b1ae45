// Package testutil provides hand-written in-memory mocks shared by the
// application layer tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
)

// MockTransactionManager runs the function directly; there is no real
// transaction to attach to the context.
type MockTransactionManager struct {
	BeginErr error
}

func (m *MockTransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(ctx)
}

// MockResellerRepository is an in-memory reseller store.
type MockResellerRepository struct {
	mu        sync.Mutex
	resellers map[uint]*reseller.Reseller
	nextID    uint

	UpdateErr error
}

func NewMockResellerRepository() *MockResellerRepository {
	return &MockResellerRepository{resellers: make(map[uint]*reseller.Reseller), nextID: 1}
}

func (m *MockResellerRepository) Add(r *reseller.Reseller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID() == 0 {
		_ = r.SetID(m.nextID)
		m.nextID++
	}
	m.resellers[r.ID()] = r
	if r.ID() >= m.nextID {
		m.nextID = r.ID() + 1
	}
}

func (m *MockResellerRepository) Create(ctx context.Context, r *reseller.Reseller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.resellers {
		if existing.Username() == r.Username() {
			return fmt.Errorf("Error 1062 (23000): Duplicate entry '%s'", r.Username())
		}
	}
	_ = r.SetID(m.nextID)
	m.nextID++
	m.resellers[r.ID()] = r
	return nil
}

func (m *MockResellerRepository) GetByID(ctx context.Context, id uint) (*reseller.Reseller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resellers[id], nil
}

func (m *MockResellerRepository) GetByIDForUpdate(ctx context.Context, id uint) (*reseller.Reseller, error) {
	return m.GetByID(ctx, id)
}

func (m *MockResellerRepository) GetByUsername(ctx context.Context, username string) (*reseller.Reseller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resellers {
		if r.Username() == username {
			return r, nil
		}
	}
	return nil, nil
}

func (m *MockResellerRepository) Update(ctx context.Context, r *reseller.Reseller) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resellers[r.ID()] = r
	return nil
}

func (m *MockResellerRepository) ListByParent(ctx context.Context, parentID uint) ([]*reseller.Reseller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*reseller.Reseller
	for _, r := range m.resellers {
		if id, ok := r.Parentage().ParentID(); ok && id == parentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockResellerRepository) ListAll(ctx context.Context) ([]*reseller.Reseller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*reseller.Reseller
	for _, r := range m.resellers {
		out = append(out, r)
	}
	return out, nil
}

func (m *MockResellerRepository) ListWithDailyFee(ctx context.Context) ([]*reseller.Reseller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*reseller.Reseller
	for _, r := range m.resellers {
		if r.DailyFee() > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// MockLedgerRepository records appended entries in order.
type MockLedgerRepository struct {
	mu      sync.Mutex
	Entries []*reseller.LedgerEntry
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *reseller.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = entry.SetID(uint(len(m.Entries) + 1))
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockLedgerRepository) ListByReseller(ctx context.Context, resellerID uint, limit int) ([]*reseller.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*reseller.LedgerEntry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].ResellerID() == resellerID {
			out = append(out, m.Entries[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockLedgerRepository) SumByReseller(ctx context.Context, resellerID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.Entries {
		if e.ResellerID() == resellerID {
			sum += e.Amount()
		}
	}
	return sum, nil
}

// MockNodeRepository is an in-memory node store. When Allocations is set,
// ListAllocatedTo filters through it; otherwise every node counts as
// allocated.
type MockNodeRepository struct {
	mu     sync.Mutex
	nodes  map[uint]*node.Node
	nextID uint

	Allocations *MockAllocationRepository
}

func NewMockNodeRepository() *MockNodeRepository {
	return &MockNodeRepository{nodes: make(map[uint]*node.Node), nextID: 1}
}

func (m *MockNodeRepository) Add(n *node.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID() == 0 {
		_ = n.SetID(m.nextID)
		m.nextID++
	}
	m.nodes[n.ID()] = n
	if n.ID() >= m.nextID {
		m.nextID = n.ID() + 1
	}
}

func (m *MockNodeRepository) Create(ctx context.Context, n *node.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = n.SetID(m.nextID)
	m.nextID++
	m.nodes[n.ID()] = n
	return nil
}

func (m *MockNodeRepository) GetByID(ctx context.Context, id uint) (*node.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes[id], nil
}

func (m *MockNodeRepository) Update(ctx context.Context, n *node.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID()] = n
	return nil
}

func (m *MockNodeRepository) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, id)
	return nil
}

func (m *MockNodeRepository) ListAll(ctx context.Context) ([]*node.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*node.Node
	for _, n := range m.nodes {
		out = append(out, n)
	}
	return out, nil
}

func (m *MockNodeRepository) ListByIDs(ctx context.Context, ids []uint) ([]*node.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*node.Node
	for _, id := range ids {
		if n, ok := m.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNodeRepository) ListAllocatedTo(ctx context.Context, resellerID uint) ([]*node.Node, error) {
	if m.Allocations == nil {
		return m.ListAll(ctx)
	}
	allocations, err := m.Allocations.ListByReseller(ctx, resellerID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*node.Node
	for _, a := range allocations {
		if n, ok := m.nodes[a.NodeID()]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// MockAllocationRepository is keyed by (reseller, node).
type MockAllocationRepository struct {
	mu          sync.Mutex
	allocations map[[2]uint]*node.Allocation
	nextID      uint
}

func NewMockAllocationRepository() *MockAllocationRepository {
	return &MockAllocationRepository{allocations: make(map[[2]uint]*node.Allocation), nextID: 1}
}

func (m *MockAllocationRepository) Add(a *node.Allocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID() == 0 {
		_ = a.SetID(m.nextID)
		m.nextID++
	}
	m.allocations[[2]uint{a.ResellerID(), a.NodeID()}] = a
}

func (m *MockAllocationRepository) Create(ctx context.Context, a *node.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = a.SetID(m.nextID)
	m.nextID++
	m.allocations[[2]uint{a.ResellerID(), a.NodeID()}] = a
	return nil
}

func (m *MockAllocationRepository) Get(ctx context.Context, resellerID, nodeID uint) (*node.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocations[[2]uint{resellerID, nodeID}], nil
}

func (m *MockAllocationRepository) ListByReseller(ctx context.Context, resellerID uint) ([]*node.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*node.Allocation
	for key, a := range m.allocations {
		if key[0] == resellerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAllocationRepository) Delete(ctx context.Context, resellerID, nodeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.allocations, [2]uint{resellerID, nodeID})
	return nil
}

// MockVPNUserRepository is an in-memory user store.
type MockVPNUserRepository struct {
	mu     sync.Mutex
	users  map[uint]*vpnuser.VPNUser
	nextID uint

	CreateErr error
	Deleted   []uint
}

func NewMockVPNUserRepository() *MockVPNUserRepository {
	return &MockVPNUserRepository{users: make(map[uint]*vpnuser.VPNUser), nextID: 1}
}

func (m *MockVPNUserRepository) Add(u *vpnuser.VPNUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID() == 0 {
		_ = u.SetID(m.nextID)
		m.nextID++
	}
	m.users[u.ID()] = u
	if u.ID() >= m.nextID {
		m.nextID = u.ID() + 1
	}
}

func (m *MockVPNUserRepository) Create(ctx context.Context, u *vpnuser.VPNUser) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = u.SetID(m.nextID)
	m.nextID++
	for i, a := range u.Accounts() {
		a.SetVPNUserID(u.ID())
		_ = a.SetID(uint(i + 1))
	}
	m.users[u.ID()] = u
	return nil
}

func (m *MockVPNUserRepository) GetByID(ctx context.Context, id uint) (*vpnuser.VPNUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *MockVPNUserRepository) GetByUsername(ctx context.Context, username string) (*vpnuser.VPNUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockVPNUserRepository) GetBySubToken(ctx context.Context, token string) (*vpnuser.VPNUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.SubToken() == token {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockVPNUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, err := m.GetByUsername(ctx, username)
	return u != nil, err
}

func (m *MockVPNUserRepository) Update(ctx context.Context, u *vpnuser.VPNUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID()] = u
	return nil
}

func (m *MockVPNUserRepository) UpdateAccountUsage(ctx context.Context, accountID uint, usedBytes int64) error {
	return nil
}

func (m *MockVPNUserRepository) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockVPNUserRepository) ListActive(ctx context.Context) ([]*vpnuser.VPNUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*vpnuser.VPNUser
	for _, u := range m.users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

// MockCleanupTaskRepository records persisted cleanup tasks.
type MockCleanupTaskRepository struct {
	mu    sync.Mutex
	Tasks []*vpnuser.CleanupTask
}

func NewMockCleanupTaskRepository() *MockCleanupTaskRepository {
	return &MockCleanupTaskRepository{}
}

func (m *MockCleanupTaskRepository) Create(ctx context.Context, t *vpnuser.CleanupTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = t.SetID(uint(len(m.Tasks) + 1))
	m.Tasks = append(m.Tasks, t)
	return nil
}

func (m *MockCleanupTaskRepository) Update(ctx context.Context, t *vpnuser.CleanupTask) error {
	return nil
}

func (m *MockCleanupTaskRepository) ListPending(ctx context.Context, limit int) ([]*vpnuser.CleanupTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*vpnuser.CleanupTask
	for _, t := range m.Tasks {
		if t.Status() == vpnuser.CleanupTaskPending {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// MockProviderAdapter scripts per-operation behavior for one node.
type MockProviderAdapter struct {
	mu sync.Mutex

	RemoteID    string
	CreateErr   error
	CreateDelay time.Duration // aborted early if the context is cancelled
	DeleteErr   error
	FetchUsage  int64
	FetchErr    error
	SuspendErr  error
	URI         string
	URIErr      error
	ConnectErr  error

	Created   []node.CreateAccountInput
	Deleted   []string
	Suspended []string
}

func (m *MockProviderAdapter) CreateAccount(ctx context.Context, in node.CreateAccountInput) (string, error) {
	if m.CreateDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.CreateDelay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.Created = append(m.Created, in)
	if m.RemoteID != "" {
		return m.RemoteID, nil
	}
	return in.Username, nil
}

func (m *MockProviderAdapter) FetchAccount(ctx context.Context, remoteID string) (*node.AccountUsage, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return &node.AccountUsage{UsedBytes: m.FetchUsage}, nil
}

func (m *MockProviderAdapter) ModifyAccount(ctx context.Context, remoteID string, quotaBytes, expiryEpoch int64) error {
	return nil
}

func (m *MockProviderAdapter) DeleteAccount(ctx context.Context, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, remoteID)
	return nil
}

func (m *MockProviderAdapter) SuspendAccount(ctx context.Context, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SuspendErr != nil {
		return m.SuspendErr
	}
	m.Suspended = append(m.Suspended, remoteID)
	return nil
}

func (m *MockProviderAdapter) SubscriptionURI(ctx context.Context, remoteID string) (string, error) {
	if m.URIErr != nil {
		return "", m.URIErr
	}
	return m.URI, nil
}

func (m *MockProviderAdapter) TestConnectivity(ctx context.Context) error {
	return m.ConnectErr
}

// MockAdapterRegistry maps node IDs to scripted adapters.
type MockAdapterRegistry struct {
	Adapters   map[uint]*MockProviderAdapter
	ResolveErr error
}

func NewMockAdapterRegistry() *MockAdapterRegistry {
	return &MockAdapterRegistry{Adapters: make(map[uint]*MockProviderAdapter)}
}

func (m *MockAdapterRegistry) Resolve(n *node.Node) (node.ProviderAdapter, error) {
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	adapter, ok := m.Adapters[n.ID()]
	if !ok {
		adapter = &MockProviderAdapter{}
		m.Adapters[n.ID()] = adapter
	}
	return adapter, nil
}

// MockPayloadCache is a map-backed payload cache.
type MockPayloadCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMockPayloadCache() *MockPayloadCache {
	return &MockPayloadCache{entries: make(map[string]string)}
}

func (m *MockPayloadCache) Get(ctx context.Context, token string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[token]
	return payload, ok, nil
}

func (m *MockPayloadCache) Set(ctx context.Context, token, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[token] = payload
	return nil
}

func (m *MockPayloadCache) Invalidate(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}
