// Package filestore is the canonical durable store for Groups and
// MonitorState: one JSON file per record, written atomically via a
// temp-file-then-rename so a crash mid-write never leaves a torn file
// behind, matching spec.md §6's persisted-state contract literally.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// Store is a filesystem-backed model.GroupStore and model.MonitorStore.
// Each Group lives at groups/<id>.json; each MonitorState lives at
// monitors/<group>__<symbol_key>.json (symbol_key's ':' is not
// filesystem-safe on all platforms, so it's escaped on disk).
type Store struct {
	mu   sync.Mutex
	root string
}

// New creates a Store rooted at dir, creating the groups/ and monitors/
// subdirectories if they don't exist.
func New(dir string) (*Store, error) {
	for _, sub := range []string{"groups", "monitors"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("filestore mkdir %s: %w", sub, err)
		}
	}
	return &Store{root: dir}, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) groupPath(id string) string {
	return filepath.Join(s.root, "groups", id+".json")
}

// escapeKey replaces the ':' separators in a symbol key
// (e.g. "stocks:NSE:RELIANCE") with "__" for use in a file name. The
// mapping is one-way; file names are never parsed back into keys.
func escapeKey(k string) string {
	return strings.ReplaceAll(k, ":", "__")
}

func (s *Store) monitorPath(groupID, symbolKey string) string {
	name := groupID + "__" + escapeKey(symbolKey) + ".json"
	return filepath.Join(s.root, "monitors", name)
}

// SaveGroup persists g, overwriting any existing file for the same ID.
func (s *Store) SaveGroup(ctx context.Context, g *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return model.Errorf(model.KindPersistenceFailure, "marshal group %q: %w", g.ID, err)
	}
	if err := writeAtomic(s.groupPath(g.ID), data); err != nil {
		return model.Errorf(model.KindPersistenceFailure, "save group %q: %w", g.ID, err)
	}
	return nil
}

// LoadGroup reads a single persisted group by ID.
func (s *Store) LoadGroup(ctx context.Context, id string) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.groupPath(id))
	if err != nil {
		return nil, model.Errorf(model.KindPersistenceFailure, "load group %q: %w", id, err)
	}
	var g model.Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, model.Errorf(model.KindPersistenceFailure, "unmarshal group %q: %w", id, err)
	}
	return &g, nil
}

// ListGroups returns every persisted group, sorted by ID for stable
// iteration order across runs.
func (s *Store) ListGroups(ctx context.Context) ([]*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, "groups")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, model.Errorf(model.KindPersistenceFailure, "list groups: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	groups := make([]*model.Group, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, model.Errorf(model.KindPersistenceFailure, "read group file %q: %w", name, err)
		}
		var g model.Group
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, model.Errorf(model.KindPersistenceFailure, "unmarshal group file %q: %w", name, err)
		}
		groups = append(groups, &g)
	}
	return groups, nil
}

// DeleteGroup removes a group's file. Deleting is idempotent: a missing
// file is not an error.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.groupPath(id)); err != nil && !os.IsNotExist(err) {
		return model.Errorf(model.KindPersistenceFailure, "delete group %q: %w", id, err)
	}
	return nil
}

// SaveMonitor persists MonitorState, overwriting any existing file for
// the same (group, symbol_key).
func (s *Store) SaveMonitor(ctx context.Context, m *model.MonitorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return model.Errorf(model.KindPersistenceFailure, "marshal monitor %q: %w", m.MonitorID(), err)
	}
	if err := writeAtomic(s.monitorPath(m.GroupID, m.SymbolKey), data); err != nil {
		return model.Errorf(model.KindPersistenceFailure, "save monitor %q: %w", m.MonitorID(), err)
	}
	return nil
}

// LoadMonitor reads a single persisted monitor state.
func (s *Store) LoadMonitor(ctx context.Context, groupID, symbolKey string) (*model.MonitorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.monitorPath(groupID, symbolKey))
	if err != nil {
		return nil, model.Errorf(model.KindPersistenceFailure, "load monitor %q/%q: %w", groupID, symbolKey, err)
	}
	var m model.MonitorState
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, model.Errorf(model.KindPersistenceFailure, "unmarshal monitor %q/%q: %w", groupID, symbolKey, err)
	}
	return &m, nil
}

// ListMonitors returns every persisted monitor state, sorted by file
// name for stable iteration order.
func (s *Store) ListMonitors(ctx context.Context) ([]*model.MonitorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, "monitors")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, model.Errorf(model.KindPersistenceFailure, "list monitors: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	monitors := make([]*model.MonitorState, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, model.Errorf(model.KindPersistenceFailure, "read monitor file %q: %w", name, err)
		}
		var m model.MonitorState
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, model.Errorf(model.KindPersistenceFailure, "unmarshal monitor file %q: %w", name, err)
		}
		monitors = append(monitors, &m)
	}
	return monitors, nil
}

// DeleteMonitor removes a monitor's file. Deleting is idempotent.
func (s *Store) DeleteMonitor(ctx context.Context, groupID, symbolKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.monitorPath(groupID, symbolKey)); err != nil && !os.IsNotExist(err) {
		return model.Errorf(model.KindPersistenceFailure, "delete monitor %q/%q: %w", groupID, symbolKey, err)
	}
	return nil
}
