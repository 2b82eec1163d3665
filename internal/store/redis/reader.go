package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// Reader provides read access to the verdict cache and the events
// pub/sub channel.
type Reader struct {
	client *goredis.Client
}

// NewReader wraps an existing client for read-side use (CLI status
// reads, WebSocket fan-out subscription).
func NewReader(client *goredis.Client) *Reader {
	return &Reader{client: client}
}

// GetVerdict returns the cached verdict for a monitor, or (zero, false)
// on a cache miss. A miss is not an error: it only means no tick has run
// recently enough. Any other Redis failure, such as an unreachable
// server, is returned as an error.
func (r *Reader) GetVerdict(ctx context.Context, groupID, symbolKey string) (model.Verdict, bool, error) {
	data, err := r.client.Get(ctx, verdictKey(groupID, symbolKey)).Bytes()
	if err == goredis.Nil {
		return model.Verdict{}, false, nil
	}
	if err != nil {
		return model.Verdict{}, false, fmt.Errorf("redis get verdict: %w", err)
	}
	var v model.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return model.Verdict{}, false, fmt.Errorf("unmarshal cached verdict: %w", err)
	}
	return v, true, nil
}

// SubscribeEvents subscribes to the events pub/sub channel and returns a
// channel of decoded Events. The subscription (and the returned
// channel) close when ctx is cancelled.
func (r *Reader) SubscribeEvents(ctx context.Context) <-chan model.Event {
	sub := r.client.Subscribe(ctx, eventsChannel)
	out := make(chan model.Event, 64)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event model.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
