package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func TestWriterAppendAndReaderQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "alerts.db")

	w, err := New(WriterConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ts := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	event := model.Event{
		Timestamp: ts,
		GroupID:   "g1",
		SymbolKey: "NSE:RELIANCE",
		MonitorID: "g1/NSE:RELIANCE",
		Severity:  model.SeverityWarn,
		Condition: model.ConditionSentimentFlip,
		Payload: map[string]any{
			"old_sentiment": "bullish",
			"new_sentiment": "bearish",
		},
	}
	if err := w.AppendEvent(context.Background(), event); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	r, err := NewReader(dbPath)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	events, err := r.EventsOnDay(context.Background(), "2026-03-05")
	if err != nil {
		t.Fatalf("EventsOnDay: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.GroupID != "g1" || got.SymbolKey != "NSE:RELIANCE" || got.Condition != model.ConditionSentimentFlip {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Payload["old_sentiment"] != "bullish" {
		t.Fatalf("payload not round-tripped: %+v", got.Payload)
	}
}

func TestEventsOnDayEmptyDay(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "alerts.db")
	w, err := New(WriterConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	r, err := NewReader(dbPath)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	events, err := r.EventsOnDay(context.Background(), "2020-01-01")
	if err != nil {
		t.Fatalf("EventsOnDay: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestPruneRemovesOldRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "alerts.db")
	w, err := New(WriterConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	old := model.Event{
		Timestamp: time.Now().UTC().AddDate(0, 0, -(retentionDays + 10)),
		GroupID:   "g1",
		SymbolKey: "NSE:RELIANCE",
		MonitorID: "g1/NSE:RELIANCE",
		Severity:  model.SeverityInfo,
		Condition: model.ConditionConfidenceDrift,
		Payload:   map[string]any{},
	}
	if err := w.AppendEvent(context.Background(), old); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	n, err := w.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row pruned, got %d", n)
	}
}
