package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"

	"github.com/aliyansayz/marketwatch/internal/model"
)

func newTestWriter(t *testing.T) (*Writer, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return &Writer{client: client}, mr
}

func TestCacheVerdictRoundTrip(t *testing.T) {
	w, _ := newTestWriter(t)
	ctx := context.Background()

	v := model.Verdict{
		Symbol:     "NSE:RELIANCE",
		Sentiment:  model.SentimentBullish,
		Confidence: 0.72,
	}
	if err := w.CacheVerdict(ctx, "g1", "NSE:RELIANCE", v); err != nil {
		t.Fatalf("CacheVerdict: %v", err)
	}

	r := NewReader(w.client)
	got, ok, err := r.GetVerdict(ctx, "g1", "NSE:RELIANCE")
	if err != nil {
		t.Fatalf("GetVerdict: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Symbol != v.Symbol || got.Sentiment != v.Sentiment {
		t.Fatalf("round-tripped verdict mismatch: %+v", got)
	}
}

func TestGetVerdictMissIsNotError(t *testing.T) {
	w, _ := newTestWriter(t)
	r := NewReader(w.client)

	_, ok, err := r.GetVerdict(context.Background(), "missing-group", "missing-symbol")
	if err != nil {
		t.Fatalf("expected no error on cache miss, got %v", err)
	}
	if ok {
		t.Fatal("expected cache miss")
	}
}

func TestPublishAndSubscribeEvents(t *testing.T) {
	w, _ := newTestWriter(t)
	r := NewReader(w.client)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events := r.SubscribeEvents(ctx)
	time.Sleep(20 * time.Millisecond) // let the subscription establish

	want := model.Event{
		GroupID:   "g1",
		SymbolKey: "NSE:RELIANCE",
		Condition: model.ConditionNewCrossover,
		Severity:  model.SeverityInfo,
	}
	w.PublishEvent(ctx, want)

	select {
	case got := <-events:
		if got.GroupID != want.GroupID || got.Condition != want.Condition {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}
