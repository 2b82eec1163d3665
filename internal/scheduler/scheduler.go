// Package scheduler drives the Analysis Orchestrator on a per-symbol
// cadence, diffs successive verdicts, and emits classified events. Each
// monitor — one per (group, symbol_key) whose alert policy is enabled —
// runs its own goroutine so ticks within a monitor execute in strict
// temporal order; a bounded worker pool caps how many orchestrator runs
// are in flight at once across all monitors.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aliyansayz/marketwatch/internal/calendar"
	"github.com/aliyansayz/marketwatch/internal/groupmodel"
	"github.com/aliyansayz/marketwatch/internal/model"
	"github.com/aliyansayz/marketwatch/internal/orchestrator"
	"github.com/aliyansayz/marketwatch/internal/ring"
)

// Status is a monitor's position in the Idle → Due → Running → Cooling
// → Idle state machine, plus Failing for the backoff branch.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusDue     Status = "due"
	StatusRunning Status = "running"
	StatusCooling Status = "cooling"
	StatusFailing Status = "failing"
)

const (
	failureThreshold = 3 // consecutive data_unavailable failures before Failing + warn event
	maxBackoff       = time.Hour
	dailyEventCap    = 10
	defaultWorkerCap = 8
	historyWindow    = 20 // recent verdicts retained per monitor, for CLI/API inspection
)

const conditionDataUnavailable model.AlertCondition = "data_unavailable"

// Scheduler owns every monitor's runtime goroutine and shared collaborators.
type Scheduler struct {
	orch          *orchestrator.Orchestrator
	groups        *groupmodel.Manager
	monitorStore  model.MonitorStore
	historyStore  model.AlertHistoryStore
	notifier      model.Notifier
	logger        *slog.Logger
	metrics       MetricsRecorder
	verdictCache  model.VerdictCache

	mu        sync.Mutex
	statuses  map[string]Status
	cancels   map[string]context.CancelFunc
	histories map[string]*ring.Ring[model.Verdict]
	slots     chan struct{}
	wg        sync.WaitGroup
}

// MetricsRecorder is the narrow metrics surface the Scheduler reports
// through; implementations typically wrap Prometheus counters/gauges.
// A nil recorder (via NopMetrics) is a valid no-op.
type MetricsRecorder interface {
	ObserveTick(groupID, symbolKey string, status Status, duration time.Duration)
	ObserveEvent(groupID, symbolKey string, condition model.AlertCondition, severity model.Severity)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveTick(string, string, Status, time.Duration)                 {}
func (NopMetrics) ObserveEvent(string, string, model.AlertCondition, model.Severity) {}

// New constructs a Scheduler. metrics may be nil, in which case NopMetrics
// is used. verdictCache may also be nil, in which case no verdict is
// cached anywhere outside the per-monitor in-memory history window.
func New(orch *orchestrator.Orchestrator, groups *groupmodel.Manager, monitorStore model.MonitorStore, historyStore model.AlertHistoryStore, notifier model.Notifier, logger *slog.Logger, metrics MetricsRecorder, verdictCache model.VerdictCache) *Scheduler {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Scheduler{
		orch:         orch,
		groups:       groups,
		monitorStore: monitorStore,
		historyStore: historyStore,
		notifier:     notifier,
		logger:       logger,
		metrics:      metrics,
		verdictCache: verdictCache,
		statuses:     make(map[string]Status),
		cancels:      make(map[string]context.CancelFunc),
		histories:    make(map[string]*ring.Ring[model.Verdict]),
	}
}

// RecentVerdicts returns the most recent historyWindow verdicts recorded
// for one monitor, oldest first, for CLI/API inspection. Returns nil if
// the monitor has never completed a tick.
func (s *Scheduler) RecentVerdicts(groupID, symbolKey string) []model.Verdict {
	s.mu.Lock()
	r, ok := s.histories[monitorKey(groupID, symbolKey)]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return r.Snapshot()
}

// recordHistory appends verdict to its monitor's recent-history ring,
// creating the ring on first use and dropping the oldest entry once
// historyWindow verdicts are held.
func (s *Scheduler) recordHistory(key string, verdict model.Verdict) {
	s.mu.Lock()
	r, ok := s.histories[key]
	if !ok {
		r = ring.New[model.Verdict](historyWindow)
		s.histories[key] = r
	}
	s.mu.Unlock()
	for r.Len() >= historyWindow {
		r.Pop()
	}
	r.Push(verdict)
}

// monitorKey mirrors model.MonitorState.MonitorID's shape without
// requiring a constructed state value.
func monitorKey(groupID, symbolKey string) string { return groupID + "/" + symbolKey }

// Start recovers persisted monitor state and spawns one goroutine per
// enabled monitor across every loaded group. Per the recovery policy, a
// monitor whose next_due_at is already in the past fires on its first
// tick rather than waiting out a full cadence.
func (s *Scheduler) Start(ctx context.Context) error {
	persisted, err := s.monitorStore.ListMonitors(ctx)
	if err != nil {
		return model.Errorf(model.KindPersistenceFailure, "list monitors: %w", err)
	}
	existing := make(map[string]*model.MonitorState, len(persisted))
	for _, m := range persisted {
		existing[monitorKey(m.GroupID, m.SymbolKey)] = m
	}

	var targets []*model.MonitorState
	for _, g := range s.groups.List() {
		if !g.Enabled {
			continue
		}
		for symbolKey, member := range g.Members {
			if !member.Enabled {
				continue
			}
			resolved, ok := groupmodel.Resolve(g, symbolKey)
			if !ok || !resolved.AlertPolicy.Enabled {
				continue
			}
			key := monitorKey(g.ID, symbolKey)
			state, ok := existing[key]
			if !ok {
				state = model.NewMonitorState(g.ID, symbolKey)
			}
			targets = append(targets, state)
		}
	}

	s.mu.Lock()
	workerCap := defaultWorkerCap
	if len(targets) < workerCap {
		workerCap = len(targets)
	}
	if workerCap <= 0 {
		workerCap = 1
	}
	s.slots = make(chan struct{}, workerCap)
	s.mu.Unlock()

	for _, state := range targets {
		s.attach(ctx, state)
	}
	return nil
}

// attach spawns the goroutine owning one monitor's tick loop.
func (s *Scheduler) attach(parent context.Context, state *model.MonitorState) {
	key := monitorKey(state.GroupID, state.SymbolKey)

	s.mu.Lock()
	if _, running := s.cancels[key]; running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancels[key] = cancel
	s.statuses[key] = StatusIdle
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runMonitor(ctx, state)
}

// Stop cancels every monitor and waits for in-flight ticks to finish
// cooperatively — an in-flight orchestrator call is allowed to complete,
// its verdict simply goes unpersisted once cancellation has been observed.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// StopMonitor tears down a single (group, symbol_key) monitor without
// affecting the rest of the fleet.
func (s *Scheduler) StopMonitor(groupID, symbolKey string) {
	key := monitorKey(groupID, symbolKey)
	s.mu.Lock()
	cancel, ok := s.cancels[key]
	if ok {
		delete(s.cancels, key)
		delete(s.statuses, key)
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// Status returns the current state-machine position of one monitor.
func (s *Scheduler) Status(groupID, symbolKey string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[monitorKey(groupID, symbolKey)]
	return st, ok
}

func (s *Scheduler) setStatus(key string, st Status) {
	s.mu.Lock()
	s.statuses[key] = st
	s.mu.Unlock()
}

// runMonitor is the per-monitor loop: wait until due and in the active
// window, run one tick under the worker pool's semaphore, persist state,
// repeat. It returns on context cancellation, or when the monitor's
// config no longer resolves or its alert policy is disabled.
func (s *Scheduler) runMonitor(ctx context.Context, state *model.MonitorState) {
	defer s.wg.Done()
	key := monitorKey(state.GroupID, state.SymbolKey)

	for {
		resolved, err := s.groups.ResolveSymbol(state.GroupID, state.SymbolKey)
		if err != nil {
			s.logger.Warn("monitor config no longer resolvable, stopping", "monitor", key, "err", err)
			return
		}
		if !resolved.AlertPolicy.Enabled {
			return
		}

		s.setStatus(key, StatusIdle)
		wait := time.Until(state.NextDueAt)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		s.setStatus(key, StatusDue)
		if !calendar.WithinActiveWindow(resolved.AlertPolicy, time.Now()) {
			state.NextDueAt = time.Now().Add(time.Minute)
			continue
		}

		select {
		case s.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}

		s.setStatus(key, StatusRunning)
		s.tick(ctx, state, resolved)
		<-s.slots

		s.setStatus(key, StatusCooling)
		if err := s.monitorStore.SaveMonitor(ctx, state); err != nil {
			s.logger.Warn("persist monitor state failed", "monitor", key, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// tick performs exactly one Idle→...→Idle cycle: run the orchestrator,
// branch on success/failure, diff against the previous verdict, emit
// events, and reschedule.
func (s *Scheduler) tick(ctx context.Context, state *model.MonitorState, resolved groupmodel.ResolvedConfig) {
	key := monitorKey(state.GroupID, state.SymbolKey)
	start := time.Now()
	cadence := time.Duration(resolved.AlertPolicy.CadenceMinutes) * time.Minute
	if cadence <= 0 {
		cadence = 15 * time.Minute
	}

	verdict, err := s.orch.Analyze(ctx, resolved)
	if ctx.Err() != nil {
		// Torn down while the orchestrator ran: discard its result.
		return
	}
	now := time.Now().UTC()

	if err != nil {
		s.handleFailure(ctx, state, resolved, cadence, err, now)
		s.metrics.ObserveTick(state.GroupID, state.SymbolKey, StatusFailing, time.Since(start))
		return
	}

	state.ConsecutiveFailures = 0
	hasLast := state.LastVerdict != nil
	var last model.Verdict
	if hasLast {
		last = *state.LastVerdict
	}

	diffs := evaluateDiffRules(resolved.AlertPolicy, hasLast, last, verdict, state.EntrySnapshot)
	for _, d := range diffs {
		if !s.shouldEmit(state, d.condition, now, cadence) {
			continue
		}
		s.emit(ctx, state, d.condition, d.severity, d.payload, now)
	}

	state.EntrySnapshot = updateEntrySnapshot(state.EntrySnapshot, verdict, now)
	state.LastVerdict = &verdict
	state.LastRunAt = now
	state.NextDueAt = now.Add(cadence) // anchored to now, not previous due time — avoids catch-up storms after outages
	s.recordHistory(key, verdict)
	if s.verdictCache != nil {
		if err := s.verdictCache.CacheVerdict(state.GroupID, state.SymbolKey, verdict); err != nil {
			s.logger.Warn("cache verdict failed", "monitor", key, "err", err)
		}
	}
	s.metrics.ObserveTick(state.GroupID, state.SymbolKey, StatusCooling, time.Since(start))
}

// handleFailure applies the backoff policy for a failed orchestrator
// run. Only data_unavailable is retriable; any other error kind is
// treated the same way here since the monitor must keep making
// progress regardless of cause, per the recovery policy's "the
// scheduler never terminates because of a single monitor's error".
func (s *Scheduler) handleFailure(ctx context.Context, state *model.MonitorState, resolved groupmodel.ResolvedConfig, cadence time.Duration, err error, now time.Time) {
	state.ConsecutiveFailures++
	s.logger.Warn("orchestrator run failed", "monitor", state.MonitorID(), "err", err, "consecutive_failures", state.ConsecutiveFailures)

	state.NextDueAt = now.Add(backoffDuration(cadence, state.ConsecutiveFailures))

	if state.ConsecutiveFailures == failureThreshold {
		s.setStatus(monitorKey(state.GroupID, state.SymbolKey), StatusFailing)
		s.emit(ctx, state, conditionDataUnavailable, model.SeverityWarn, map[string]any{
			"consecutive_failures": state.ConsecutiveFailures,
			"error":                err.Error(),
		}, now)
	}
}

func backoffDuration(cadence time.Duration, failures int) time.Duration {
	if failures < failureThreshold {
		return cadence
	}
	d := cadence
	shift := failures - failureThreshold + 1
	for i := 0; i < shift && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// shouldEmit applies both dedup rules: at most one event per
// (monitor, condition) per cadence interval, and a daily cap across all
// conditions to blunt alert storms.
func (s *Scheduler) shouldEmit(state *model.MonitorState, cond model.AlertCondition, now time.Time, cadence time.Duration) bool {
	today := now.Format("2006-01-02")
	if state.EmittedDay != today {
		state.EmittedDay = today
		state.AlertsEmittedToday = make(map[model.AlertCondition]int)
	}
	total := 0
	for _, c := range state.AlertsEmittedToday {
		total += c
	}
	if total >= dailyEventCap {
		return false
	}
	if last, ok := state.LastEventAt[cond]; ok && now.Sub(last) < cadence {
		return false
	}
	return true
}

func (s *Scheduler) emit(ctx context.Context, state *model.MonitorState, cond model.AlertCondition, severity model.Severity, payload map[string]any, now time.Time) {
	if state.AlertsEmittedToday == nil {
		state.AlertsEmittedToday = make(map[model.AlertCondition]int)
	}
	if state.LastEventAt == nil {
		state.LastEventAt = make(map[model.AlertCondition]time.Time)
	}
	state.AlertsEmittedToday[cond]++
	state.LastEventAt[cond] = now

	event := model.Event{
		Timestamp: now,
		GroupID:   state.GroupID,
		SymbolKey: state.SymbolKey,
		MonitorID: state.MonitorID(),
		Severity:  severity,
		Condition: cond,
		Payload:   payload,
	}

	if s.historyStore != nil {
		if err := s.historyStore.AppendEvent(ctx, event); err != nil {
			s.logger.Warn("append alert history failed", "monitor", state.MonitorID(), "err", err)
		}
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("notify failed", "monitor", state.MonitorID(), "condition", cond, "err", err)
	}
	s.metrics.ObserveEvent(state.GroupID, state.SymbolKey, cond, severity)
}
