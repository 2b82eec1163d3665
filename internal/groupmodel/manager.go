package groupmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// Manager is the in-memory CRUD surface over Groups, backed by a
// model.GroupStore for durability. Reads and writes are serialized so a
// config change always takes effect atomically between scheduler ticks,
// never mid-tick — the only shared mutable state in the system.
type Manager struct {
	mu     sync.RWMutex
	groups map[string]*model.Group
	store  model.GroupStore
}

// NewManager creates a Manager backed by store. Callers should call
// LoadAll once at startup to populate from durable storage.
func NewManager(store model.GroupStore) *Manager {
	return &Manager{groups: make(map[string]*model.Group), store: store}
}

// LoadAll restores every persisted group into memory, replacing whatever
// was there. Intended for startup recovery.
func (m *Manager) LoadAll(ctx context.Context) error {
	groups, err := m.store.ListGroups(ctx)
	if err != nil {
		return model.Errorf(model.KindPersistenceFailure, "load groups: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = make(map[string]*model.Group, len(groups))
	for _, g := range groups {
		m.groups[g.ID] = g
	}
	return nil
}

// Create adds a new group and persists it. Returns an error if the ID
// already exists.
func (m *Manager) Create(ctx context.Context, g *model.Group) error {
	m.mu.Lock()
	if _, exists := m.groups[g.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("group %q already exists", g.ID)
	}
	m.groups[g.ID] = g
	m.mu.Unlock()

	if err := m.store.SaveGroup(ctx, g); err != nil {
		return model.Errorf(model.KindPersistenceFailure, "save group %q: %w", g.ID, err)
	}
	return nil
}

// Get returns the group with id, if present.
func (m *Manager) Get(id string) (*model.Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	return g, ok
}

// List returns every loaded group.
func (m *Manager) List() []*model.Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out
}

// Update replaces the group's in-memory value and persists it.
func (m *Manager) Update(ctx context.Context, g *model.Group) error {
	m.mu.Lock()
	if _, exists := m.groups[g.ID]; !exists {
		m.mu.Unlock()
		return fmt.Errorf("group %q does not exist", g.ID)
	}
	m.groups[g.ID] = g
	m.mu.Unlock()

	if err := m.store.SaveGroup(ctx, g); err != nil {
		return model.Errorf(model.KindPersistenceFailure, "save group %q: %w", g.ID, err)
	}
	return nil
}

// Delete removes a group and its members from memory and durable
// storage. Per the data model invariant, deleting a group deletes its
// members and associated alert state — callers are responsible for also
// clearing Scheduler monitor state for this group's symbol keys.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.groups, id)
	m.mu.Unlock()

	if err := m.store.DeleteGroup(ctx, id); err != nil {
		return model.Errorf(model.KindPersistenceFailure, "delete group %q: %w", id, err)
	}
	return nil
}

// ResolveSymbol resolves the config for one member of a loaded group.
func (m *Manager) ResolveSymbol(groupID, symbolKey string) (ResolvedConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[groupID]
	if !ok {
		return ResolvedConfig{}, fmt.Errorf("group %q not found", groupID)
	}
	resolved, ok := Resolve(g, symbolKey)
	if !ok {
		return ResolvedConfig{}, fmt.Errorf("symbol %q not found in group %q", symbolKey, groupID)
	}
	return resolved, nil
}
