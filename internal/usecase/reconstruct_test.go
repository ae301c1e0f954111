package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/tokenledger/internal/domain"
	"github.com/iho/tokenledger/internal/usecase"
	"github.com/iho/tokenledger/internal/usecase/mocks"
)

func TestReconstruct_NoSnapshotInWindow(t *testing.T) {
	store := mocks.NewMockEventStore()
	uc := usecase.NewLedgerUseCase(store, mocks.NewMockListingIndex(), mocks.NewMockIDGenerator())

	// A page full of adjustments with no snapshot is not reconstructable,
	// regardless of how many events the account actually has.
	now := time.Now().UTC()
	store.LatestFunc = func(ctx context.Context, accountID string, limit int) ([]*domain.Event, error) {
		var page []*domain.Event
		for v := int64(limit); v >= 1; v-- {
			page = append(page, domain.NewCreditedEvent(accountID, v+100, 1, now))
		}
		return page, nil
	}

	_, err := uc.GetAccount(context.Background(), "acc-1")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestReconstruct_FoldsOnlyEventsAfterSnapshot(t *testing.T) {
	store := mocks.NewMockEventStore()
	uc := usecase.NewLedgerUseCase(store, mocks.NewMockListingIndex(), mocks.NewMockIDGenerator())

	now := time.Now().UTC()

	// Snapshot at v5 (balance 20), then two adjustments. Older events below
	// the snapshot must not contribute.
	seed := []*domain.Event{
		domain.NewCreatedEvent("acc-1", "owner-1", "a@x.com", now),
		domain.NewCreditedEvent("acc-1", 2, 100, now),
		domain.NewDebitedEvent("acc-1", 3, 50, now),
		domain.NewCreditedEvent("acc-1", 4, 25, now),
		domain.NewSnapshotEvent(domain.Account{ID: "acc-1", OwnerID: "owner-1", Email: "a@x.com", Balance: 20}, 5, now),
		domain.NewCreditedEvent("acc-1", 6, 3, now),
		domain.NewDebitedEvent("acc-1", 7, 1, now),
	}
	if err := store.Append(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := uc.GetAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Balance != 22 {
		t.Errorf("expected balance 22 (snapshot 20 +3 -1), got %d", account.Balance)
	}
	if account.Version != 7 {
		t.Errorf("expected version 7, got %d", account.Version)
	}
	if account.OwnerID != "owner-1" || account.Email != "a@x.com" {
		t.Errorf("identity fields lost: %+v", account)
	}
}
