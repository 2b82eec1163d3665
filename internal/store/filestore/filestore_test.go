package filestore

import (
	"context"
	"testing"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func TestSaveLoadListDeleteGroup(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	g := model.NewGroup("g1", "Nifty Watch")
	g.AddMember(model.SymbolConfig{
		Symbol:     "RELIANCE",
		AssetClass: model.AssetStocks,
		Interval:   model.Interval("5m"),
		Period:     model.Period1Month,
		Enabled:    true,
	})

	if err := s.SaveGroup(ctx, g); err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}

	loaded, err := s.LoadGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadGroup: %v", err)
	}
	if loaded.Name != "Nifty Watch" || len(loaded.Members) != 1 {
		t.Fatalf("loaded group mismatch: %+v", loaded)
	}

	list, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 group, got %d", len(list))
	}

	if err := s.DeleteGroup(ctx, "g1"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := s.LoadGroup(ctx, "g1"); err == nil {
		t.Fatal("expected error loading deleted group")
	}

	// Deleting again is idempotent.
	if err := s.DeleteGroup(ctx, "g1"); err != nil {
		t.Fatalf("DeleteGroup (idempotent): %v", err)
	}
}

func TestSaveLoadListDeleteMonitor(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	m := model.NewMonitorState("g1", "stocks:NSE:RELIANCE")
	m.LastRunAt = time.Now().UTC()

	if err := s.SaveMonitor(ctx, m); err != nil {
		t.Fatalf("SaveMonitor: %v", err)
	}

	loaded, err := s.LoadMonitor(ctx, "g1", "stocks:NSE:RELIANCE")
	if err != nil {
		t.Fatalf("LoadMonitor: %v", err)
	}
	if loaded.MonitorID() != "g1/stocks:NSE:RELIANCE" {
		t.Fatalf("unexpected monitor id: %s", loaded.MonitorID())
	}

	list, err := s.ListMonitors(ctx)
	if err != nil {
		t.Fatalf("ListMonitors: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(list))
	}

	if err := s.DeleteMonitor(ctx, "g1", "stocks:NSE:RELIANCE"); err != nil {
		t.Fatalf("DeleteMonitor: %v", err)
	}
	if _, err := s.LoadMonitor(ctx, "g1", "stocks:NSE:RELIANCE"); err == nil {
		t.Fatal("expected error loading deleted monitor")
	}
}
