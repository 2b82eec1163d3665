// Package sqlite persists emitted alert events to a local SQLite file in
// WAL mode, following the same single-writer-connection discipline the
// teacher's candle writer used for its own append-only tables.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// retentionDays bounds how long alerts_history rows are kept before
// Prune removes them. The exact retention window was left open by the
// spec; 90 days gives a quarter of lookback without unbounded growth.
const retentionDays = 90

// WriterConfig configures the SQLite-backed alert history store.
type WriterConfig struct {
	DBPath string
}

// Writer implements model.AlertHistoryStore against a single SQLite
// connection. SQLite allows exactly one writer at a time regardless of
// connection count, so the pool is capped at one connection and all
// writes serialize through it the way the teacher's candle writer does.
type Writer struct {
	db *sql.DB
}

// New opens (creating if absent) the alert history database.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened alert history store at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			day        TEXT NOT NULL,
			timestamp  TEXT NOT NULL,
			group_id   TEXT NOT NULL,
			symbol_key TEXT NOT NULL,
			monitor_id TEXT NOT NULL,
			severity   TEXT NOT NULL,
			condition  TEXT NOT NULL,
			payload    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_history_day ON alerts_history(day);
		CREATE INDEX IF NOT EXISTS idx_alerts_history_monitor ON alerts_history(group_id, symbol_key);
	`)
	return err
}

// AppendEvent inserts one event. Events are low-volume relative to the
// candle streams the teacher's writer handled, so each call commits its
// own single-row transaction rather than batching behind a flush timer.
func (w *Writer) AppendEvent(ctx context.Context, event model.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = w.db.ExecContext(ctx, `
		INSERT INTO alerts_history (day, timestamp, group_id, symbol_key, monitor_id, severity, condition, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.Timestamp.UTC().Format("2006-01-02"),
		// Fixed-width fractional seconds, so the text column sorts in time order.
		event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"),
		event.GroupID,
		event.SymbolKey,
		event.MonitorID,
		string(event.Severity),
		string(event.Condition),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert alert event: %w", err)
	}
	return nil
}

// EventsOnDay satisfies model.AlertHistoryStore's read side directly
// off the writer's connection, so a *Writer alone can be handed to
// callers that only have one SQLite handle to pass around (cmd/server);
// the dedicated Reader opens a separate connection pool for callers that
// want one; no command in this module uses it.
func (w *Writer) EventsOnDay(ctx context.Context, day string) ([]model.Event, error) {
	return queryEventsOnDay(ctx, w.db, day)
}

// Prune deletes rows older than retentionDays, keyed off the day column.
// Intended to run on a daily timer from the owning process.
func (w *Writer) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format("2006-01-02")
	res, err := w.db.ExecContext(ctx, `DELETE FROM alerts_history WHERE day < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune alert history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DB returns the underlying database handle, for health-check pings.
func (w *Writer) DB() *sql.DB {
	return w.db
}

// Close closes the underlying database handle.
func (w *Writer) Close() error {
	return w.db.Close()
}
