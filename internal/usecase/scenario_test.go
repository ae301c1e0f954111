package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iho/tokenledger/internal/domain"
	"github.com/iho/tokenledger/internal/usecase"
)

// TestLedgerScenario walks the canonical account lifecycle: creation grant,
// credits and debits, a rejected overdraft, and the snapshot interleaved once
// enough events accumulate.
func TestLedgerScenario(t *testing.T) {
	uc, store, _ := newLedger(t)
	ctx := context.Background()

	account, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: "owner-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.Balance != 1 || account.Version != 2 {
		t.Fatalf("expected balance 1 version 2 after create, got %+v", account)
	}

	account, err = uc.CreditAccount(ctx, account.ID, 5)
	if err != nil {
		t.Fatalf("credit 5: %v", err)
	}
	if account.Balance != 6 {
		t.Fatalf("expected balance 6, got %d", account.Balance)
	}

	account, err = uc.DebitAccount(ctx, account.ID, 3)
	if err != nil {
		t.Fatalf("debit 3: %v", err)
	}
	if account.Balance != 3 {
		t.Fatalf("expected balance 3, got %d", account.Balance)
	}

	if _, err := uc.DebitAccount(ctx, account.ID, 10); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Eight credits of 1. The last one sees SnapshotThreshold accumulated
	// events and must interleave a snapshot before itself.
	for i := 0; i < 8; i++ {
		account, err = uc.CreditAccount(ctx, account.ID, 1)
		if err != nil {
			t.Fatalf("credit #%d: %v", i+1, err)
		}
	}

	if account.Balance != 11 {
		t.Fatalf("expected final balance 11, got %d", account.Balance)
	}
	// v1..v11 mutations plus the interleaved snapshot at v12 and the final
	// credit at v13.
	if account.Version != 13 {
		t.Fatalf("expected final version 13, got %d", account.Version)
	}

	events, err := store.Latest(ctx, account.ID, usecase.ProbeWindow)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}

	if events[0].Kind != domain.EventCredited || events[0].Version != 13 {
		t.Fatalf("expected head event Credited v13, got %s v%d", events[0].Kind, events[0].Version)
	}
	if events[1].Kind != domain.EventSnapshot || events[1].Version != 12 {
		t.Fatalf("expected snapshot at v12, got %s v%d", events[1].Kind, events[1].Version)
	}
	if events[1].Snapshot.Balance != 10 {
		t.Fatalf("snapshot must carry state before the mutating event, got balance %d", events[1].Snapshot.Balance)
	}

	// One logical operation produced two committed events: the forwarder
	// must see both. Modeled here as the two distinct store writes.
	if n := store.EventCount(account.ID); n != 13 {
		t.Fatalf("expected 13 events in store, got %d", n)
	}
}

// TestConcurrentCredits races callers on the same account. Each retries on
// version conflict with freshly reconstructed state; no credit may be lost or
// double-applied.
func TestConcurrentCredits(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	account, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{OwnerID: "owner-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const callers = 8
	const amount = int64(2)

	var wg sync.WaitGroup
	errCh := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := uc.CreditAccount(ctx, account.ID, amount)
				if err == nil {
					return
				}
				if errors.Is(err, domain.ErrVersionConflict) {
					continue
				}
				errCh <- err
				return
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := uc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	want := domain.InitialBalance + callers*amount
	if got.Balance != want {
		t.Fatalf("expected balance %d, got %d", want, got.Balance)
	}
}
