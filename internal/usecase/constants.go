package usecase

import "time"

const (
	// SnapshotThreshold is the number of non-snapshot events allowed to
	// accumulate before the next mutating append interleaves a fresh
	// snapshot. Tunable; bounds replay length to at most this many folds.
	SnapshotThreshold = 9

	// ProbeWindow is how many trailing events reconstruction loads. One more
	// than the threshold so the governing snapshot is always inside the page.
	ProbeWindow = SnapshotThreshold + 1

	// DefaultPageSize is the listing page size when the caller passes none.
	DefaultPageSize = 20

	// MaxPageSize caps the listing page size.
	MaxPageSize = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
