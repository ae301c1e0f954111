package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tokenledger/internal/domain"
)

const (
	insertListingSQL = `
		INSERT INTO listing (sort_key, account_id, owner_id, email, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	listAccountsSQL = `
		SELECT sort_key, account_id, owner_id, email, created_at
		FROM listing
		WHERE sort_key > $1
		ORDER BY sort_key
		LIMIT $2`
)

// ListingRepository implements usecase.ListingIndex. Entries are written by
// the EventStore inside the create transaction; this repository only reads.
type ListingRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// List returns up to limit entries after the cursor position in sort-key
// order, plus an opaque cursor for the next page.
func (r *ListingRepository) List(ctx context.Context, limit int, cursor string) ([]*domain.ListingEntry, string, error) {
	after, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var entries []*domain.ListingEntry

	err = r.retrier.Retry(ctx, func() error {
		// One extra row decides whether a next page exists.
		rows, err := r.pool.Query(ctx, listAccountsSQL, after, limit+1)
		if err != nil {
			return fmt.Errorf("query listing: %w", err)
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			var e domain.ListingEntry
			if err := rows.Scan(&e.SortKey, &e.AccountID, &e.OwnerID, &e.Email, &e.CreatedAt); err != nil {
				return fmt.Errorf("scan listing entry: %w", err)
			}
			entries = append(entries, &e)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		next = encodeCursor(entries[limit-1].SortKey)
	}

	return entries, next, nil
}
