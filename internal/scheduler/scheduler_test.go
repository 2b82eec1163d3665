package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// nopNotifier discards every event, so emit() can run without a real
// notification backend wired up.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.Event) error { return nil }

func newTestScheduler() *Scheduler {
	return &Scheduler{notifier: nopNotifier{}, metrics: NopMetrics{}}
}

func TestBackoffDurationHoldsUntilThreshold(t *testing.T) {
	cadence := 15 * time.Minute
	if got := backoffDuration(cadence, 1); got != cadence {
		t.Errorf("backoffDuration(1) = %v, want cadence %v", got, cadence)
	}
	if got := backoffDuration(cadence, failureThreshold-1); got != cadence {
		t.Errorf("backoffDuration(%d) = %v, want cadence %v", failureThreshold-1, got, cadence)
	}
}

func TestBackoffDurationDoublesPastThreshold(t *testing.T) {
	cadence := 15 * time.Minute
	at := backoffDuration(cadence, failureThreshold)
	next := backoffDuration(cadence, failureThreshold+1)
	if next != at*2 {
		t.Errorf("backoffDuration(%d) = %v, want double of backoffDuration(%d) = %v", failureThreshold+1, next, failureThreshold, at)
	}
}

func TestBackoffDurationCapsAtMax(t *testing.T) {
	got := backoffDuration(15*time.Minute, failureThreshold+20)
	if got != maxBackoff {
		t.Errorf("backoffDuration with many failures = %v, want cap %v", got, maxBackoff)
	}
}

func TestShouldEmitDedupsWithinCadence(t *testing.T) {
	s := newTestScheduler()
	state := model.NewMonitorState("g1", "stocks:NSE:RELIANCE")
	now := time.Now().UTC()
	cadence := 15 * time.Minute

	if !s.shouldEmit(state, model.ConditionSentimentFlip, now, cadence) {
		t.Fatal("first emission should be allowed")
	}
	s.emit(context.Background(), state, model.ConditionSentimentFlip, model.SeverityWarn, nil, now)

	if s.shouldEmit(state, model.ConditionSentimentFlip, now.Add(time.Minute), cadence) {
		t.Fatal("same condition within cadence should be deduped")
	}
	if !s.shouldEmit(state, model.ConditionSentimentFlip, now.Add(cadence+time.Second), cadence) {
		t.Fatal("same condition after cadence elapses should be allowed again")
	}
}

func TestShouldEmitEnforcesDailyCap(t *testing.T) {
	s := newTestScheduler()
	state := model.NewMonitorState("g1", "stocks:NSE:RELIANCE")
	now := time.Now().UTC()
	cadence := time.Minute

	for i := 0; i < dailyEventCap; i++ {
		cond := model.AlertCondition("cond")
		tick := now.Add(time.Duration(i) * (cadence + time.Second))
		if !s.shouldEmit(state, cond, tick, cadence) {
			t.Fatalf("emission %d should be allowed under the daily cap", i)
		}
		s.emit(context.Background(), state, cond, model.SeverityInfo, nil, tick)
	}

	overCap := now.Add(time.Duration(dailyEventCap) * (cadence + time.Second))
	if s.shouldEmit(state, model.AlertCondition("cond"), overCap, cadence) {
		t.Fatal("emission past the daily cap should be refused")
	}
}

func TestShouldEmitResetsCounterOnNewDay(t *testing.T) {
	s := newTestScheduler()
	state := model.NewMonitorState("g1", "stocks:NSE:RELIANCE")
	day1 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < dailyEventCap; i++ {
		s.emit(context.Background(), state, model.AlertCondition("cond"), model.SeverityInfo, nil, day1)
	}

	day2 := day1.AddDate(0, 0, 1)
	if !s.shouldEmit(state, model.AlertCondition("cond"), day2, time.Minute) {
		t.Fatal("a new calendar day should reset the daily cap")
	}
}

func TestMonitorKeyFormat(t *testing.T) {
	if got := monitorKey("g1", "stocks:NSE:RELIANCE"); got != "g1/stocks:NSE:RELIANCE" {
		t.Errorf("monitorKey = %q", got)
	}
}

func TestNopMetricsDiscardsObservations(t *testing.T) {
	var m MetricsRecorder = NopMetrics{}
	m.ObserveTick("g1", "s1", StatusRunning, time.Millisecond)
	m.ObserveEvent("g1", "s1", model.ConditionSentimentFlip, model.SeverityWarn)
}
