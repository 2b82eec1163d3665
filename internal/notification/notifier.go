// Package notification provides alert delivery backends that implement
// model.Notifier: a log sink for development, an HTTP webhook, a
// Telegram bot, and a WebSocket fan-out for live dashboard clients.
package notification

import (
	"context"
	"log/slog"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// LogNotifier logs every event through slog — the default backend used
// when no external transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event model.Event) error {
	n.logger.Info("alert",
		"condition", event.Condition,
		"severity", event.Severity,
		"group_id", event.GroupID,
		"symbol_key", event.SymbolKey,
		"monitor_id", event.MonitorID,
	)
	return nil
}

// MultiNotifier fans one event out to several backends. The first error
// encountered is returned after every backend has been attempted, so one
// failing transport never blocks the others.
type MultiNotifier struct {
	backends []model.Notifier
}

// NewMultiNotifier wraps backends for fan-out delivery.
func NewMultiNotifier(backends ...model.Notifier) *MultiNotifier {
	return &MultiNotifier{backends: backends}
}

func (n *MultiNotifier) Notify(ctx context.Context, event model.Event) error {
	var firstErr error
	for _, b := range n.backends {
		if err := b.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
