package usecase

import (
	"context"
	"time"

	"github.com/iho/tokenledger/internal/domain"
)

// LedgerUseCase implements the ledger operations: create, credit, debit, get
// and list. All concurrency control is delegated to the store's conditional
// append; a domain.ErrVersionConflict means another writer progressed the
// account and the caller decides whether to retry with fresh state.
type LedgerUseCase struct {
	store   EventStore
	listing ListingIndex
	idGen   IDGenerator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(store EventStore, listing ListingIndex, idGen IDGenerator) *LedgerUseCase {
	return &LedgerUseCase{
		store:   store,
		listing: listing,
		idGen:   idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID string
	Email   string
}

// CreateAccount creates a new account with the fixed initial grant. The
// version-1 Created event, its mirroring version-2 snapshot and the listing
// entry go to the store as one conditional batch, so either the account fully
// exists or nothing does.
func (uc *LedgerUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateOwnerID(input.OwnerID); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	created := domain.NewCreatedEvent(uc.idGen.Generate(), input.OwnerID, input.Email, now)

	account, err := domain.Fold(domain.Account{}, []*domain.Event{created})
	if err != nil {
		return nil, err
	}

	snapshot := domain.NewSnapshotEvent(account, account.Version+1, now)
	account.Version = snapshot.Version

	entry := domain.NewListingEntry(account, now)

	if err := uc.store.AppendWithListing(ctx, []*domain.Event{created, snapshot}, entry); err != nil {
		return nil, err
	}

	return &account, nil
}

// CreditAccount appends a Credited event and returns the updated state.
func (uc *LedgerUseCase) CreditAccount(ctx context.Context, accountID string, amount int64) (*domain.Account, error) {
	return uc.mutate(ctx, accountID, domain.EventCredited, amount)
}

// DebitAccount appends a Debited event after checking the reconstructed
// balance covers the amount. An insufficient balance fails before any write.
// The check-then-append window against concurrent debits is closed by the
// conditional append: the losing writer gets domain.ErrVersionConflict.
func (uc *LedgerUseCase) DebitAccount(ctx context.Context, accountID string, amount int64) (*domain.Account, error) {
	return uc.mutate(ctx, accountID, domain.EventDebited, amount)
}

// mutate is the self-contained read-validate-append cycle shared by credit
// and debit. State is always re-read here, never taken from the caller.
func (uc *LedgerUseCase) mutate(ctx context.Context, accountID string, kind domain.EventKind, amount int64) (*domain.Account, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	rec, err := uc.reconstruct(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if kind == domain.EventDebited {
		if err := rec.Account.ValidateDebit(amount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	if err := uc.store.Append(ctx, buildMutation(rec, kind, amount, now)); err != nil {
		return nil, err
	}

	updated, err := uc.reconstruct(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &updated.Account, nil
}

// GetAccount reconstructs and returns the current account state.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	rec, err := uc.reconstruct(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &rec.Account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	PageSize int
	Cursor   string
}

// ListAccountsOutput is one listing page.
type ListAccountsOutput struct {
	Entries    []*domain.ListingEntry
	NextCursor string
}

// ListAccounts enumerates accounts in listing-key order. The cursor is an
// opaque continuation token; an empty NextCursor means the listing is
// exhausted.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) (*ListAccountsOutput, error) {
	if input.PageSize <= 0 {
		input.PageSize = DefaultPageSize
	}
	if input.PageSize > MaxPageSize {
		input.PageSize = MaxPageSize
	}

	entries, next, err := uc.listing.List(ctx, input.PageSize, input.Cursor)
	if err != nil {
		return nil, err
	}

	return &ListAccountsOutput{Entries: entries, NextCursor: next}, nil
}
