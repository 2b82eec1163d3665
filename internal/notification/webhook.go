package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// WebhookNotifier sends events to a generic HTTP webhook endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookNotifier creates a webhook notifier posting to url.
func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (w *WebhookNotifier) Notify(ctx context.Context, event model.Event) error {
	payload := map[string]any{
		"timestamp":  event.Timestamp.UTC().Format(time.RFC3339Nano),
		"group_id":   event.GroupID,
		"symbol_key": event.SymbolKey,
		"monitor_id": event.MonitorID,
		"severity":   string(event.Severity),
		"condition":  string(event.Condition),
		"payload":    event.Payload,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	w.logger.Debug("webhook delivered", "url", w.url, "monitor_id", event.MonitorID, "condition", event.Condition)
	return nil
}
