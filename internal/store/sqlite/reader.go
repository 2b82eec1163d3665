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

// Reader provides read-only access to the alert history store over its
// own connection pool, for callers that don't need write access.
type Reader struct {
	db *sql.DB
}

// NewReader opens a read-oriented connection. SQLite's WAL mode lets
// readers run concurrently with the single writer connection.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[sqlite-reader] opened %s", dbPath)
	return &Reader{db: db}, nil
}

// EventsOnDay returns every event recorded for the given day
// (YYYY-MM-DD, UTC), oldest first.
func (r *Reader) EventsOnDay(ctx context.Context, day string) ([]model.Event, error) {
	return queryEventsOnDay(ctx, r.db, day)
}

func queryEventsOnDay(ctx context.Context, db *sql.DB, day string) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT timestamp, group_id, symbol_key, monitor_id, severity, condition, payload
		FROM alerts_history
		WHERE day = ?
		ORDER BY timestamp ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("sqlite query alerts_history: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			e          model.Event
			ts         string
			severity   string
			condition  string
			payloadRaw string
		)
		if err := rows.Scan(&ts, &e.GroupID, &e.SymbolKey, &e.MonitorID, &severity, &condition, &payloadRaw); err != nil {
			return nil, fmt.Errorf("sqlite scan alerts_history: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp: %w", err)
		}
		e.Timestamp = parsed
		e.Severity = model.Severity(severity)
		e.Condition = model.AlertCondition(condition)
		if err := json.Unmarshal([]byte(payloadRaw), &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
