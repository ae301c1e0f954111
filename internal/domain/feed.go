package domain

import (
	"encoding/json"
	"time"
)

// FeedRecord is one change-feed entry, written in the same transaction as the
// event it mirrors. The feed is the source for downstream republication.
type FeedRecord struct {
	ID          int64
	AccountID   string
	Version     int64
	Kind        EventKind
	OccurredAt  time.Time
	Payload     json.RawMessage
	CreatedAt   time.Time
	Forwarded   bool
	ForwardedAt *time.Time
}
