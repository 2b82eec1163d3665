package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aliyansayz/marketwatch/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHub fans out Events to every connected dashboard client. It
// implements model.Notifier directly: Notify broadcasts to all clients
// rather than addressing one.
type WSHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	logger  *slog.Logger
}

// NewWSHub creates an empty hub.
func NewWSHub(logger *slog.Logger) *WSHub {
	return &WSHub{clients: make(map[*wsClient]struct{}), logger: logger}
}

// HandleWS upgrades an incoming HTTP request to a WebSocket connection
// and registers it as a broadcast target.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, 32), hub: h}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *WSHub) removeClient(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ClientCount returns the number of currently connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify implements model.Notifier: it JSON-encodes the event and fans
// it out to every connected client non-blockingly — a slow or dead
// client never stalls delivery to the others.
func (h *WSHub) Notify(_ context.Context, event model.Event) error {
	envelope, err := json.Marshal(map[string]any{
		"timestamp":  event.Timestamp.UTC().Format(time.RFC3339Nano),
		"group_id":   event.GroupID,
		"symbol_key": event.SymbolKey,
		"monitor_id": event.MonitorID,
		"severity":   event.Severity,
		"condition":  event.Condition,
		"payload":    event.Payload,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- envelope:
		default:
			// slow client: drop rather than block the broadcaster
		}
	}
	return nil
}

// wsClient is one connected dashboard peer.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *WSHub
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
