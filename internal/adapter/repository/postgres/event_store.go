package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tokenledger/internal/domain"
)

const pgErrUniqueViolation = "23505"

const (
	insertEventSQL = `
		INSERT INTO events (account_id, version, kind, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5)`

	insertFeedSQL = `
		INSERT INTO event_feed (account_id, version, kind, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5)`

	latestEventsSQL = `
		SELECT account_id, version, kind, occurred_at, payload
		FROM events
		WHERE account_id = $1
		ORDER BY version DESC
		LIMIT $2`
)

// EventStore implements usecase.EventStore on Postgres. The primary key on
// (account_id, version) is the server-enforced append condition: the whole
// batch commits in one transaction or fails as a unit, and a key collision
// surfaces as domain.ErrVersionConflict (domain.ErrAccountExists for a
// version-1 batch). Change-feed rows are written in the same transaction, one
// per event, so the feed mirrors exactly what committed.
type EventStore struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// Append conditionally inserts the ordered batch in one atomic write.
func (s *EventStore) Append(ctx context.Context, events []*domain.Event) error {
	return s.append(ctx, events, nil)
}

// AppendWithListing additionally inserts the listing entry in the same
// transaction. Used by account creation.
func (s *EventStore) AppendWithListing(ctx context.Context, events []*domain.Event, entry *domain.ListingEntry) error {
	return s.append(ctx, events, entry)
}

func (s *EventStore) append(ctx context.Context, events []*domain.Event, entry *domain.ListingEntry) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, e := range events {
		body, err := e.Body()
		if err != nil {
			return err
		}

		batch.Queue(insertEventSQL, e.AccountID, e.Version, string(e.Kind), timestamptz(e.OccurredAt), body)
		batch.Queue(insertFeedSQL, e.AccountID, e.Version, string(e.Kind), timestamptz(e.OccurredAt), body)
	}

	if entry != nil {
		batch.Queue(insertListingSQL, entry.SortKey, entry.AccountID, entry.OwnerID, entry.Email, timestamptz(entry.CreatedAt))
	}

	firstVersion := events[0].Version

	return s.retrier.Retry(ctx, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin append: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := sendBatch(ctx, tx, batch); err != nil {
			return mapAppendError(err, firstVersion)
		}

		return tx.Commit(ctx)
	})
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}

	return br.Close()
}

// mapAppendError translates a failed conditional insert into the domain
// taxonomy. Only a unique-key violation means a lost race; everything else is
// a store failure and propagates wrapped.
func mapAppendError(err error, firstVersion int64) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		if firstVersion == 1 {
			return domain.ErrAccountExists
		}
		return domain.ErrVersionConflict
	}

	return fmt.Errorf("append events: %w", err)
}

// Latest returns up to limit events in descending version order. Reads go to
// the primary events table, which reflects every committed append.
func (s *EventStore) Latest(ctx context.Context, accountID string, limit int) ([]*domain.Event, error) {
	var events []*domain.Event

	err := s.retrier.Retry(ctx, func() error {
		rows, err := s.pool.Query(ctx, latestEventsSQL, accountID, limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		defer rows.Close()

		events = events[:0]
		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return err
			}
			events = append(events, e)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		e          domain.Event
		kind       string
		occurredAt pgtype.Timestamptz
		payload    []byte
	)

	if err := row.Scan(&e.AccountID, &e.Version, &kind, &occurredAt, &payload); err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}

	e.Kind = domain.EventKind(kind)
	e.OccurredAt = occurredAt.Time

	if err := e.SetBody(payload); err != nil {
		return nil, err
	}

	return &e, nil
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
