package model

import "time"

// EntrySnapshot freezes a Verdict at the moment a monitor observes a
// non-neutral sentiment different from the current snapshot's (or with
// no snapshot held), used by the validity_loss diff rule.
type EntrySnapshot struct {
	Sentiment  Sentiment
	Confidence float64
	CapturedAt time.Time
}

// MonitorState is the Scheduler's per-(group, symbol_key) bookkeeping.
// It is the only state that survives across ticks for a given monitor.
type MonitorState struct {
	GroupID             string
	SymbolKey           string
	LastVerdict         *Verdict
	LastRunAt           time.Time
	NextDueAt           time.Time
	ConsecutiveFailures int
	EntrySnapshot       *EntrySnapshot
	AlertsEmittedToday  map[AlertCondition]int
	EmittedDay          string // YYYY-MM-DD the AlertsEmittedToday counters apply to
	LastEventAt         map[AlertCondition]time.Time
}

// MonitorID returns the stable identifier used to address this monitor
// in logs, metrics, and notification envelopes.
func (m MonitorState) MonitorID() string {
	return m.GroupID + "/" + m.SymbolKey
}

// NewMonitorState creates a fresh, never-run monitor due immediately.
func NewMonitorState(groupID, symbolKey string) *MonitorState {
	return &MonitorState{
		GroupID:            groupID,
		SymbolKey:          symbolKey,
		NextDueAt:          time.Now().UTC(),
		AlertsEmittedToday: make(map[AlertCondition]int),
		LastEventAt:        make(map[AlertCondition]time.Time),
	}
}
