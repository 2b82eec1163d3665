package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// pendingWrite is a verdict cache write that couldn't reach Redis while
// the circuit was open.
type pendingWrite struct {
	GroupID   string
	SymbolKey string
	Data      []byte // JSON-encoded model.Verdict
}

// BufferedWriter wraps a Writer with a circuit breaker. While the
// circuit is open, CacheVerdict calls are buffered locally instead of
// failing outright, and replayed once the circuit closes — losing the
// cache for a while is fine (filestore/SQLite remain authoritative) but
// replaying keeps the CLI's "current status" read warm sooner.
type BufferedWriter struct {
	writer *Writer
	cb     *CircuitBreaker
	ctx    context.Context

	mu     sync.Mutex
	buffer []pendingWrite
	maxBuf int

	OnBuffer func()
	OnFlush  func(count int)
}

// NewBufferedWriter creates a BufferedWriter wrapping the given Writer.
func NewBufferedWriter(ctx context.Context, w *Writer, cb *CircuitBreaker, maxBufferSize int) *BufferedWriter {
	if maxBufferSize <= 0 {
		maxBufferSize = 10000
	}
	bw := &BufferedWriter{
		writer: w,
		cb:     cb,
		ctx:    ctx,
		buffer: make([]pendingWrite, 0, 256),
		maxBuf: maxBufferSize,
	}

	prevCallback := cb.OnStateChange
	cb.OnStateChange = func(from, to State) {
		if prevCallback != nil {
			prevCallback(from, to)
		}
		if to == StateClosed {
			go bw.flush()
		}
	}

	return bw
}

// CacheVerdict writes through the circuit breaker; on ErrCircuitOpen it
// buffers the verdict instead of returning an error, since a dropped
// cache write is never fatal to the scheduler.
func (bw *BufferedWriter) CacheVerdict(groupID, symbolKey string, v model.Verdict) error {
	err := bw.cb.Execute(func() error {
		return bw.writer.CacheVerdict(bw.ctx, groupID, symbolKey, v)
	})
	if err == ErrCircuitOpen {
		bw.bufferWrite(groupID, symbolKey, v)
		return nil
	}
	return err
}

func (bw *BufferedWriter) bufferWrite(groupID, symbolKey string, v model.Verdict) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[buffered-writer] marshal error: %v", err)
		return
	}

	bw.mu.Lock()
	defer bw.mu.Unlock()

	if len(bw.buffer) >= bw.maxBuf {
		bw.buffer = bw.buffer[1:]
	}
	bw.buffer = append(bw.buffer, pendingWrite{GroupID: groupID, SymbolKey: symbolKey, Data: data})

	if bw.OnBuffer != nil {
		bw.OnBuffer()
	}
}

// flush replays all buffered verdict writes through the underlying writer.
func (bw *BufferedWriter) flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}
	toFlush := bw.buffer
	bw.buffer = make([]pendingWrite, 0, 256)
	bw.mu.Unlock()

	flushed := 0
	for _, pw := range toFlush {
		var v model.Verdict
		if json.Unmarshal(pw.Data, &v) == nil {
			bw.writer.CacheVerdict(bw.ctx, pw.GroupID, pw.SymbolKey, v)
		}
		flushed++
	}

	log.Printf("[buffered-writer] flushed %d buffered verdict writes", flushed)
	if bw.OnFlush != nil {
		bw.OnFlush(flushed)
	}
}

// PendingCount returns the number of buffered writes waiting to be flushed.
func (bw *BufferedWriter) PendingCount() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}

// Underlying returns the wrapped Writer for direct access.
func (bw *BufferedWriter) Underlying() *Writer {
	return bw.writer
}
