package model

import (
	"context"
	"time"
)

// DataProvider fetches OHLCV frames for a symbol. Implementations are
// free to cache; the engine treats the provider as a black box and never
// inspects its internals. Network specifics (HTTP, vendor SDKs, rate
// limiting) live entirely on the implementing side of this interface.
type DataProvider interface {
	Fetch(ctx context.Context, symbol string, assetClass AssetClass, interval Interval, period Period) (Frame, error)
}

// Severity classifies a notification event's urgency.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// Event is the envelope every notification carries, regardless of which
// diff rule produced it. Payload holds the condition-specific fields as
// a plain map so Notifier implementations don't need to know every
// condition's Go type.
type Event struct {
	Timestamp time.Time
	GroupID   string
	SymbolKey string
	MonitorID string
	Severity  Severity
	Condition AlertCondition
	Payload   map[string]any
}

// Notifier delivers Events to whatever transport a deployment wires in
// (log sink, webhook, websocket fan-out, ...). Notify must not block the
// scheduler indefinitely; implementations should apply their own
// timeout.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// GroupStore persists Groups (and transitively their SymbolConfig
// members) between runs.
type GroupStore interface {
	SaveGroup(ctx context.Context, g *Group) error
	LoadGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
	DeleteGroup(ctx context.Context, id string) error
}

// MonitorStore persists per-monitor scheduler state between runs.
type MonitorStore interface {
	SaveMonitor(ctx context.Context, m *MonitorState) error
	LoadMonitor(ctx context.Context, groupID, symbolKey string) (*MonitorState, error)
	ListMonitors(ctx context.Context) ([]*MonitorState, error)
	DeleteMonitor(ctx context.Context, groupID, symbolKey string) error
}

// AlertHistoryStore appends emitted events to a durable, queryable log.
type AlertHistoryStore interface {
	AppendEvent(ctx context.Context, event Event) error
	EventsOnDay(ctx context.Context, day string) ([]Event, error)
}

// VerdictCache is an optional acceleration layer the Scheduler updates
// with the latest Verdict after every successful tick. It is never the
// source of truth — a failed or buffered write is not fatal, since
// MonitorStore/AlertHistoryStore already hold the durable record. A nil
// VerdictCache means caching is disabled.
type VerdictCache interface {
	CacheVerdict(groupID, symbolKey string, v Verdict) error
}
