package usecase

import (
	"time"

	"github.com/iho/tokenledger/internal/domain"
)

// needsSnapshot reports whether the next mutating append must interleave a
// fresh snapshot to keep reconstruction bounded.
func needsSnapshot(rec *Reconstruction) bool {
	return rec.EventsSinceSnapshot >= SnapshotThreshold
}

// buildMutation assembles the conditional append batch for one credit or
// debit: optionally a snapshot of the state before the mutation at the next
// available version, then the mutating event itself.
func buildMutation(rec *Reconstruction, kind domain.EventKind, amount int64, at time.Time) []*domain.Event {
	next := rec.Account.Version + 1

	var events []*domain.Event
	if needsSnapshot(rec) {
		events = append(events, domain.NewSnapshotEvent(rec.Account, next, at))
		next++
	}

	switch kind {
	case domain.EventCredited:
		events = append(events, domain.NewCreditedEvent(rec.Account.ID, next, amount, at))
	case domain.EventDebited:
		events = append(events, domain.NewDebitedEvent(rec.Account.ID, next, amount, at))
	}

	return events
}
