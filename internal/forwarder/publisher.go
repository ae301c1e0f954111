package forwarder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/tokenledger/internal/domain"
)

// messageSource identifies this service in bus messages so consumers can
// route on origin.
const messageSource = "tokenledger"

// StreamPublisher publishes feed records to Redis Streams. With PerKind set,
// each event kind gets its own stream (stream:created, stream:credited, ...);
// otherwise everything lands on the single base stream.
type StreamPublisher struct {
	client  *redis.Client
	stream  string
	perKind bool
}

// NewStreamPublisher creates a StreamPublisher writing to the given base stream.
func NewStreamPublisher(client *redis.Client, stream string, perKind bool) *StreamPublisher {
	return &StreamPublisher{
		client:  client,
		stream:  stream,
		perKind: perKind,
	}
}

// Publish appends the batch to the stream in feed order. The whole batch goes
// through one pipeline; on error nothing is acknowledged and the caller
// retries, so consumers may see duplicates but never gaps.
func (p *StreamPublisher) Publish(ctx context.Context, records []*domain.FeedRecord) error {
	pipe := p.client.Pipeline()

	for _, rec := range records {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.streamFor(rec.Kind),
			Values: map[string]interface{}{
				"source":      messageSource,
				"feed_id":     rec.ID,
				"account_id":  rec.AccountID,
				"version":     rec.Version,
				"kind":        string(rec.Kind),
				"occurred_at": rec.OccurredAt.UTC().Format(time.RFC3339Nano),
				"payload":     string(rec.Payload),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("xadd batch: %w", err)
	}

	return nil
}

func (p *StreamPublisher) streamFor(kind domain.EventKind) string {
	if !p.perKind {
		return p.stream
	}
	return p.stream + ":" + strings.ToLower(string(kind))
}

// LogPublisher is a publisher that only logs records. Useful for local runs
// without a bus.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs each record.
func (p *LogPublisher) Publish(ctx context.Context, records []*domain.FeedRecord) error {
	for _, rec := range records {
		p.logger.Info("EVENT FORWARDED",
			slog.Int64("feed_id", rec.ID),
			slog.String("account_id", rec.AccountID),
			slog.Int64("version", rec.Version),
			slog.String("kind", string(rec.Kind)),
			slog.String("payload", string(rec.Payload)))
	}
	return nil
}
