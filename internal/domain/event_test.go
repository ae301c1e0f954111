package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/iho/tokenledger/internal/domain"
)

func TestFold_CreditsAndDebits(t *testing.T) {
	now := time.Now().UTC()
	base := domain.Account{ID: "acc-1", OwnerID: "owner-1", Email: "a@x.com", Balance: 1, Version: 2}

	events := []*domain.Event{
		domain.NewCreditedEvent("acc-1", 3, 5, now),
		domain.NewDebitedEvent("acc-1", 4, 3, now),
		domain.NewCreditedEvent("acc-1", 5, 1, now),
	}

	state, err := domain.Fold(base, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Balance != 4 {
		t.Errorf("expected balance 4, got %d", state.Balance)
	}
	if state.Version != 5 {
		t.Errorf("expected version 5, got %d", state.Version)
	}
	if state.Email != "a@x.com" {
		t.Errorf("identity fields must survive the fold, got %q", state.Email)
	}
}

func TestFold_SnapshotEquivalence(t *testing.T) {
	// Folding the raw history from version 1 must equal folding the tail on
	// top of an interleaved snapshot, for any snapshot position.
	now := time.Now().UTC()

	created := domain.NewCreatedEvent("acc-1", "owner-1", "a@x.com", now)
	history := []*domain.Event{
		created,
		domain.NewCreditedEvent("acc-1", 2, 10, now),
		domain.NewDebitedEvent("acc-1", 3, 4, now),
		domain.NewCreditedEvent("acc-1", 4, 2, now),
	}

	full, err := domain.Fold(domain.Account{}, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for cut := 1; cut < len(history); cut++ {
		prefix, err := domain.Fold(domain.Account{}, history[:cut])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap := domain.NewSnapshotEvent(prefix, prefix.Version, now)
		tail := append([]*domain.Event{snap}, history[cut:]...)

		resumed, err := domain.Fold(domain.Account{}, tail)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if resumed.Balance != full.Balance {
			t.Errorf("cut %d: expected balance %d, got %d", cut, full.Balance, resumed.Balance)
		}
		if resumed.Version != full.Version {
			t.Errorf("cut %d: expected version %d, got %d", cut, full.Version, resumed.Version)
		}
	}
}

func TestFold_UnknownKind(t *testing.T) {
	events := []*domain.Event{{AccountID: "acc-1", Version: 1, Kind: "Exploded"}}

	_, err := domain.Fold(domain.Account{}, events)
	if !errors.Is(err, domain.ErrUnknownEventKind) {
		t.Fatalf("expected ErrUnknownEventKind, got %v", err)
	}
}

func TestEvent_BodyRoundTrip(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		event *domain.Event
	}{
		{"created", domain.NewCreatedEvent("acc-1", "owner-1", "a@x.com", now)},
		{"credited", domain.NewCreditedEvent("acc-1", 3, 7, now)},
		{"debited", domain.NewDebitedEvent("acc-1", 4, 2, now)},
		{"snapshot", domain.NewSnapshotEvent(domain.Account{ID: "acc-1", OwnerID: "owner-1", Email: "a@x.com", Balance: 6}, 5, now)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.event.Body()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			decoded := &domain.Event{AccountID: tt.event.AccountID, Version: tt.event.Version, Kind: tt.event.Kind, OccurredAt: now}
			if err := decoded.SetBody(body); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			before, _ := domain.Fold(domain.Account{ID: "acc-1", Balance: 10, Version: tt.event.Version - 1}, []*domain.Event{tt.event})
			after, err := domain.Fold(domain.Account{ID: "acc-1", Balance: 10, Version: tt.event.Version - 1}, []*domain.Event{decoded})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if before != after {
				t.Errorf("decoded event folds differently: %+v vs %+v", before, after)
			}
		})
	}
}
