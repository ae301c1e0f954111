package usecase

import (
	"context"

	"github.com/iho/tokenledger/internal/domain"
)

// Reconstruction is the outcome of rebuilding one account from its most
// recent snapshot plus the events written after it.
type Reconstruction struct {
	Account             domain.Account
	SnapshotVersion     int64
	EventsSinceSnapshot int
}

// reconstruct loads the trailing probe window for the account and folds it.
// Returns domain.ErrAccountNotFound when the account has no reconstructable
// state.
func (uc *LedgerUseCase) reconstruct(ctx context.Context, accountID string) (*Reconstruction, error) {
	events, err := uc.store.Latest(ctx, accountID, ProbeWindow)
	if err != nil {
		return nil, err
	}

	return reconstruct(events)
}

// reconstruct folds a newest-first event page onto its most recent snapshot.
// Every valid account carries a snapshot within the probe window (creation
// writes one at version 2, and the snapshot policy maintains the bound), so
// a page without one means the account is unknown or corrupted. State is
// never inferred from a partial history.
func reconstruct(events []*domain.Event) (*Reconstruction, error) {
	snapIdx := -1

	for i, e := range events {
		if e.Kind == domain.EventSnapshot {
			snapIdx = i
			break
		}
	}

	if snapIdx == -1 {
		return nil, domain.ErrAccountNotFound
	}

	snap := events[snapIdx]
	base := snap.Snapshot.Account(snap.AccountID)

	// Events strictly newer than the snapshot, oldest first.
	tail := make([]*domain.Event, 0, snapIdx)
	for i := snapIdx - 1; i >= 0; i-- {
		tail = append(tail, events[i])
	}

	account, err := domain.Fold(base, tail)
	if err != nil {
		return nil, err
	}

	return &Reconstruction{
		Account:             account,
		SnapshotVersion:     snap.Version,
		EventsSinceSnapshot: len(tail),
	}, nil
}
