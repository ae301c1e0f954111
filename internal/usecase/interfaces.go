package usecase

import (
	"context"
	"time"

	"github.com/iho/tokenledger/internal/domain"
)

// EventStore defines the append-only storage for account events. Appends are
// conditional: every event is inserted only if nothing exists at its exact
// (accountID, version) key, all-or-nothing. A lost race surfaces as
// domain.ErrVersionConflict (domain.ErrAccountExists for a version-1 batch).
type EventStore interface {
	// Append conditionally inserts the ordered batch in one atomic write.
	Append(ctx context.Context, events []*domain.Event) error
	// AppendWithListing additionally inserts the listing entry in the same
	// atomic write. Used only by account creation.
	AppendWithListing(ctx context.Context, events []*domain.Event, entry *domain.ListingEntry) error
	// Latest returns up to limit events for the account in descending version
	// order, read from the primary keyspace.
	Latest(ctx context.Context, accountID string, limit int) ([]*domain.Event, error)
}

// ListingIndex enumerates accounts ordered by the listing sort key.
// The index may be eventually consistent relative to the event keyspace.
type ListingIndex interface {
	// List returns up to limit entries after the cursor position and an
	// opaque cursor for the next page, or "" when exhausted.
	List(ctx context.Context, limit int, cursor string) ([]*domain.ListingEntry, string, error)
}

// FeedRepository reads the change feed emitted on every committed append.
type FeedRepository interface {
	Unforwarded(ctx context.Context, limit int) ([]*domain.FeedRecord, error)
	MarkForwarded(ctx context.Context, ids []int64, at time.Time) error
}

// IDGenerator generates unique account identifiers.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
