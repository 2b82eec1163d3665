package model

import "time"

// GroupDefaults holds the defaults a Group applies to every member
// SymbolConfig before that member's own overrides are layered on top.
type GroupDefaults struct {
	Indicators     IndicatorOverrides
	StrategyName   string
	StrategyParams StrategyOverrides
	AlertPolicy    AlertPolicy
}

// Group is a named collection of SymbolConfigs sharing defaults.
// Members is keyed by SymbolConfig.SymbolKey().
type Group struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Enabled     bool
	Members     map[string]SymbolConfig
	Defaults    GroupDefaults
}

// NewGroup creates an empty, enabled Group with the given id/name.
func NewGroup(id, name string) *Group {
	now := time.Now().UTC()
	return &Group{
		ID:        id,
		Name:      name,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
		Members:   make(map[string]SymbolConfig),
		Defaults: GroupDefaults{
			StrategyName: "default-check-single-timeframe",
			AlertPolicy:  DefaultAlertPolicy(),
		},
	}
}

// AddMember inserts or replaces a SymbolConfig, keyed by its SymbolKey.
func (g *Group) AddMember(cfg SymbolConfig) {
	if g.Members == nil {
		g.Members = make(map[string]SymbolConfig)
	}
	g.Members[cfg.SymbolKey()] = cfg
	g.UpdatedAt = time.Now().UTC()
}

// RemoveMember deletes a member by key. Returns false if it didn't exist.
func (g *Group) RemoveMember(symbolKey string) bool {
	if _, ok := g.Members[symbolKey]; !ok {
		return false
	}
	delete(g.Members, symbolKey)
	g.UpdatedAt = time.Now().UTC()
	return true
}

// SetMemberEnabled toggles a member's Enabled flag in place.
func (g *Group) SetMemberEnabled(symbolKey string, enabled bool) bool {
	cfg, ok := g.Members[symbolKey]
	if !ok {
		return false
	}
	cfg.Enabled = enabled
	g.Members[symbolKey] = cfg
	g.UpdatedAt = time.Now().UTC()
	return true
}
