package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tokenledger/internal/domain"
)

const (
	unforwardedSQL = `
		SELECT id, account_id, version, kind, occurred_at, payload, created_at
		FROM event_feed
		WHERE NOT forwarded
		ORDER BY id
		LIMIT $1`

	markForwardedSQL = `
		UPDATE event_feed
		SET forwarded = TRUE, forwarded_at = $2
		WHERE id = ANY($1)`
)

// FeedRepository implements usecase.FeedRepository. Feed rows are written by
// the EventStore in the same transaction as the events they mirror; this
// repository serves the forwarder's poll-and-acknowledge cycle. Feed ids are
// monotonic, so delivery preserves per-account event order.
type FeedRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewFeedRepository creates a new FeedRepository.
func NewFeedRepository(pool *pgxpool.Pool) *FeedRepository {
	return &FeedRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// Unforwarded returns the oldest records not yet republished.
func (r *FeedRepository) Unforwarded(ctx context.Context, limit int) ([]*domain.FeedRecord, error) {
	var records []*domain.FeedRecord

	err := r.retrier.Retry(ctx, func() error {
		rows, err := r.pool.Query(ctx, unforwardedSQL, limit)
		if err != nil {
			return fmt.Errorf("query feed: %w", err)
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			var (
				rec  domain.FeedRecord
				kind string
			)
			if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Version, &kind, &rec.OccurredAt, &rec.Payload, &rec.CreatedAt); err != nil {
				return fmt.Errorf("scan feed record: %w", err)
			}
			rec.Kind = domain.EventKind(kind)
			records = append(records, &rec)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// MarkForwarded acknowledges successful republication of the given records.
func (r *FeedRepository) MarkForwarded(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, markForwardedSQL, ids, timestamptz(at))
		if err != nil {
			return fmt.Errorf("mark forwarded: %w", err)
		}
		return nil
	})
}
