// Package durability provides an optional write-behind observer for
// UserStore mutations. The core store has zero knowledge of this package;
// it is wired in only by the HTTP adapter's main, and only when a
// -durability target is configured.
package durability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Writer appends one entry per successful mutation to a Redis stream for
// external replay/audit. It is never read from by the server itself.
type Writer struct {
	client *redis.Client
	stream string
	log    *zap.Logger
}

// NewWriter dials addr (a "host:port" Redis address) and returns a Writer
// appending to the given stream name.
func NewWriter(addr, stream string, log *zap.Logger) *Writer {
	return &Writer{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		stream: stream,
		log:    log.Named("durability"),
	}
}

// Entry is one logged mutation.
type Entry struct {
	Op      string `json:"op"` // "put", "modify", or "erase"
	UID     uint32 `json:"uid"`
	Name    string `json:"name,omitempty"`
	ExpPers uint32 `json:"exp_pers,omitempty"`
	Active  uint32 `json:"active,omitempty"`
	ExpGang uint32 `json:"exp_gang,omitempty"`
}

// Append writes entry to the stream. Failures are logged, never returned to
// the HTTP caller: the durability log is best-effort and must not affect
// the in-memory store's own success/failure semantics.
func (w *Writer) Append(ctx context.Context, entry Entry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		w.log.Error("marshal durability entry", zap.Error(err))
		return
	}
	if err := w.client.XAdd(ctx, &redis.XAddArgs{
		Stream: w.stream,
		Values: map[string]interface{}{"entry": payload},
	}).Err(); err != nil {
		w.log.Warn("append durability entry", zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (w *Writer) Close() error {
	if err := w.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
