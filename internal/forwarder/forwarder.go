// Package forwarder republishes committed ledger events to the event bus.
// It polls the event feed for unforwarded records, publishes them in order,
// and acknowledges only after the bus accepted the batch, so delivery is
// at-least-once and consumers must dedupe on (account_id, version).
package forwarder

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/tokenledger/internal/domain"
	"github.com/iho/tokenledger/internal/infrastructure/metrics"
	"github.com/iho/tokenledger/internal/usecase"
)

// Publisher delivers a batch of feed records to the event bus.
type Publisher interface {
	Publish(ctx context.Context, records []*domain.FeedRecord) error
}

// Forwarder drains the event feed into a Publisher.
type Forwarder struct {
	feed        usecase.FeedRepository
	publisher   Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	batchSize   int
	interval    time.Duration
	maxAttempts uint64
}

// Config for Forwarder.
type Config struct {
	Feed        usecase.FeedRepository
	Publisher   Publisher
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	BatchSize   int           // Number of feed records to fetch per poll
	Interval    time.Duration // Polling interval
	MaxAttempts uint64        // Publish attempts per batch before giving up until the next poll
}

// New creates a new Forwarder.
func New(cfg Config) *Forwarder {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Forwarder{
		feed:        cfg.Feed,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		batchSize:   cfg.BatchSize,
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Run polls the feed until the context is cancelled.
func (f *Forwarder) Run(ctx context.Context) error {
	f.logger.Info("forwarder started",
		slog.Int("batch_size", f.batchSize),
		slog.Duration("interval", f.interval))

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// Drain immediately on start so a restart doesn't wait a full interval.
	if err := f.forwardOnce(ctx); err != nil {
		f.logger.Error("forward pass failed on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("forwarder shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := f.forwardOnce(ctx); err != nil {
				f.logger.Error("forward pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

// forwardOnce fetches one batch, publishes it with bounded retries, and marks
// it forwarded. A batch that exhausts its retries stays unforwarded and is
// picked up again on the next poll.
func (f *Forwarder) forwardOnce(ctx context.Context) error {
	records, err := f.feed.Unforwarded(ctx, f.batchSize)
	if err != nil {
		return err
	}

	if f.metrics != nil {
		f.metrics.FeedBacklog.Set(float64(len(records)))
	}
	if len(records) == 0 {
		return nil
	}

	f.logger.Info("forwarding feed records",
		slog.Int("count", len(records)),
		slog.Int64("first_id", records[0].ID))

	if err := f.publishWithRetry(ctx, records); err != nil {
		if f.metrics != nil {
			f.metrics.PublishFailures.Inc()
		}
		f.logger.Error("giving up on batch until next poll",
			slog.Int64("first_id", records[0].ID),
			slog.String("error", err.Error()))
		return err
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	if err := f.feed.MarkForwarded(ctx, ids, time.Now()); err != nil {
		// The batch was published but not acknowledged; the next poll will
		// publish it again. Consumers tolerate the duplicate.
		return err
	}

	if f.metrics != nil {
		f.metrics.EventsForwarded.Add(float64(len(records)))
	}

	return nil
}

func (f *Forwarder) publishWithRetry(ctx context.Context, records []*domain.FeedRecord) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	attempt := 0

	return backoff.Retry(func() error {
		err := f.publisher.Publish(ctx, records)
		if err != nil {
			attempt++
			f.logger.Warn("publish attempt failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, f.maxAttempts-1), ctx))
}
