package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind discriminates the event payload union.
type EventKind string

// Event kinds
const (
	EventCreated  EventKind = "Created"
	EventCredited EventKind = "Credited"
	EventDebited  EventKind = "Debited"
	EventSnapshot EventKind = "Snapshot"
)

// CreatedData is the payload of a Created event.
type CreatedData struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

// AdjustmentData is the payload of a Credited or Debited event. Amount is
// always positive; the kind carries the sign.
type AdjustmentData struct {
	Amount int64 `json:"amount"`
}

// SnapshotData is the payload of a Snapshot event: a full copy of account
// state at the version the snapshot represents.
type SnapshotData struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
	Version int64  `json:"version"`
}

// Event is an immutable fact about one account at a specific version.
// Exactly one payload pointer is set, matching Kind.
type Event struct {
	AccountID  string
	Version    int64
	Kind       EventKind
	OccurredAt time.Time
	Created    *CreatedData
	Adjustment *AdjustmentData
	Snapshot   *SnapshotData
}

// NewCreatedEvent builds the version-1 Created event for a new account.
func NewCreatedEvent(accountID, ownerID, email string, at time.Time) *Event {
	return &Event{
		AccountID:  accountID,
		Version:    1,
		Kind:       EventCreated,
		OccurredAt: at,
		Created: &CreatedData{
			OwnerID: ownerID,
			Email:   email,
			Balance: InitialBalance,
		},
	}
}

// NewCreditedEvent builds a Credited event at the given version.
func NewCreditedEvent(accountID string, version, amount int64, at time.Time) *Event {
	return &Event{
		AccountID:  accountID,
		Version:    version,
		Kind:       EventCredited,
		OccurredAt: at,
		Adjustment: &AdjustmentData{Amount: amount},
	}
}

// NewDebitedEvent builds a Debited event at the given version.
func NewDebitedEvent(accountID string, version, amount int64, at time.Time) *Event {
	return &Event{
		AccountID:  accountID,
		Version:    version,
		Kind:       EventDebited,
		OccurredAt: at,
		Adjustment: &AdjustmentData{Amount: amount},
	}
}

// NewSnapshotEvent builds a Snapshot event at the given version carrying the
// state reconstructed just before it. The snapshot represents the fold of all
// events up to and including its own version.
func NewSnapshotEvent(a Account, version int64, at time.Time) *Event {
	return &Event{
		AccountID:  a.ID,
		Version:    version,
		Kind:       EventSnapshot,
		OccurredAt: at,
		Snapshot: &SnapshotData{
			OwnerID: a.OwnerID,
			Email:   a.Email,
			Balance: a.Balance,
			Version: version,
		},
	}
}

// Account materializes the state carried by a Snapshot payload.
func (s *SnapshotData) Account(accountID string) Account {
	return Account{
		ID:      accountID,
		OwnerID: s.OwnerID,
		Email:   s.Email,
		Balance: s.Balance,
		Version: s.Version,
	}
}

// Body serializes the kind-specific payload for storage and forwarding.
func (e *Event) Body() (json.RawMessage, error) {
	switch e.Kind {
	case EventCreated:
		return json.Marshal(e.Created)
	case EventCredited, EventDebited:
		return json.Marshal(e.Adjustment)
	case EventSnapshot:
		return json.Marshal(e.Snapshot)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
	}
}

// SetBody deserializes a stored payload into the pointer matching Kind.
func (e *Event) SetBody(data []byte) error {
	switch e.Kind {
	case EventCreated:
		e.Created = &CreatedData{}
		return json.Unmarshal(data, e.Created)
	case EventCredited, EventDebited:
		e.Adjustment = &AdjustmentData{}
		return json.Unmarshal(data, e.Adjustment)
	case EventSnapshot:
		e.Snapshot = &SnapshotData{}
		return json.Unmarshal(data, e.Snapshot)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
	}
}

// Fold applies events, oldest first, on top of the base state. Created and
// Snapshot events replace the state wholesale; Credited and Debited adjust
// the balance. Any kind outside the four known ones aborts the fold.
func Fold(base Account, events []*Event) (Account, error) {
	state := base

	for _, e := range events {
		switch e.Kind {
		case EventCreated:
			state = Account{
				ID:      e.AccountID,
				OwnerID: e.Created.OwnerID,
				Email:   e.Created.Email,
				Balance: e.Created.Balance,
				Version: e.Version,
			}
		case EventSnapshot:
			state = e.Snapshot.Account(e.AccountID)
		case EventCredited:
			state.Balance += e.Adjustment.Amount
			state.Version = e.Version
		case EventDebited:
			state.Balance -= e.Adjustment.Amount
			state.Version = e.Version
		default:
			return Account{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
		}
	}

	return state, nil
}
