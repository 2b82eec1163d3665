// Package redis caches the latest Verdict per monitor for fast
// "current status" reads and publishes emitted events on a pub/sub
// channel for subscribers (Reader.SubscribeEvents). The in-process
// WebSocket hub does not read that channel; cmd/server hands it events
// directly. Redis is acceleration, never the source of
// truth — filestore and SQLite own durability, mirroring the teacher's
// own in-memory/durable-store-is-truth posture.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// defaultVerdictTTL bounds how long a cached verdict survives without a
// fresh tick before a CLI "get current status" read should treat it as
// stale rather than serving it.
const defaultVerdictTTL = 30 * time.Minute

// WriterConfig configures the Redis verdict cache client.
type WriterConfig struct {
	Addr     string
	Password string
	DB       int
}

// Writer is a thin client over the verdict cache and event pub/sub
// channel.
type Writer struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client}, nil
}

func verdictKey(groupID, symbolKey string) string {
	return "verdict:latest:" + groupID + ":" + symbolKey
}

// eventsChannel is the single pub/sub channel every emitted event fans
// out on; subscribers filter by GroupID/SymbolKey client-side, the same
// shape the teacher's WSNotifier-equivalent subscribers use for its
// dashboard channels.
const eventsChannel = "pub:alerts:events"

// CacheVerdict stores the latest Verdict for a monitor with a TTL. A
// miss on read simply means "no recent run" — callers must not treat a
// cache miss as an error.
func (w *Writer) CacheVerdict(ctx context.Context, groupID, symbolKey string, v model.Verdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	if err := w.client.Set(ctx, verdictKey(groupID, symbolKey), data, defaultVerdictTTL).Err(); err != nil {
		return fmt.Errorf("redis set verdict: %w", err)
	}
	return nil
}

// PublishEvent fans an emitted event out to eventsChannel for any
// subscriber of that channel. Best-effort: a publish failure never
// blocks the scheduler, it's only logged.
func (w *Writer) PublishEvent(ctx context.Context, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[redis] marshal event for publish: %v", err)
		return
	}
	if err := w.client.Publish(ctx, eventsChannel, data).Err(); err != nil {
		log.Printf("[redis] publish event: %v", err)
	}
}

// Close closes the Redis client.
func (w *Writer) Close() error {
	return w.client.Close()
}
