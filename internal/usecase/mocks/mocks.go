package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/tokenledger/internal/domain"
)

// MockEventStore is an in-memory EventStore enforcing the conditional-append
// contract: an insert at an occupied (accountID, version) key fails the whole
// batch atomically.
type MockEventStore struct {
	mu     sync.Mutex
	events map[string]map[int64]*domain.Event

	// Listing, when set, receives entries written through AppendWithListing.
	Listing *MockListingIndex

	AppendFunc            func(ctx context.Context, events []*domain.Event) error
	AppendWithListingFunc func(ctx context.Context, events []*domain.Event, entry *domain.ListingEntry) error
	LatestFunc            func(ctx context.Context, accountID string, limit int) ([]*domain.Event, error)
}

func NewMockEventStore() *MockEventStore {
	return &MockEventStore{
		events: make(map[string]map[int64]*domain.Event),
	}
}

func (m *MockEventStore) Append(ctx context.Context, events []*domain.Event) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, events)
	}
	return m.append(events, nil)
}

func (m *MockEventStore) AppendWithListing(ctx context.Context, events []*domain.Event, entry *domain.ListingEntry) error {
	if m.AppendWithListingFunc != nil {
		return m.AppendWithListingFunc(ctx, events, entry)
	}
	return m.append(events, entry)
}

func (m *MockEventStore) append(events []*domain.Event, entry *domain.ListingEntry) error {
	if len(events) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range events {
		if _, ok := m.events[e.AccountID][e.Version]; ok {
			if events[0].Version == 1 {
				return domain.ErrAccountExists
			}
			return domain.ErrVersionConflict
		}
	}

	for _, e := range events {
		if m.events[e.AccountID] == nil {
			m.events[e.AccountID] = make(map[int64]*domain.Event)
		}
		m.events[e.AccountID][e.Version] = e
	}

	if entry != nil && m.Listing != nil {
		m.Listing.Add(entry)
	}

	return nil
}

func (m *MockEventStore) Latest(ctx context.Context, accountID string, limit int) ([]*domain.Event, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, accountID, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*domain.Event, 0, len(m.events[accountID]))
	for _, e := range m.events[accountID] {
		all = append(all, e)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Version > all[j].Version })

	if len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

// EventCount returns the number of stored events for the account.
func (m *MockEventStore) EventCount(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events[accountID])
}

// MockListingIndex is an in-memory listing index ordered by sort key. The
// mock's cursor is the raw last sort key; callers treat it as opaque either
// way.
type MockListingIndex struct {
	mu      sync.Mutex
	entries []*domain.ListingEntry

	ListFunc func(ctx context.Context, limit int, cursor string) ([]*domain.ListingEntry, string, error)
}

func NewMockListingIndex() *MockListingIndex {
	return &MockListingIndex{}
}

func (m *MockListingIndex) Add(entry *domain.ListingEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	sort.Slice(m.entries, func(i, j int) bool { return m.entries[i].SortKey < m.entries[j].SortKey })
}

func (m *MockListingIndex) List(ctx context.Context, limit int, cursor string) ([]*domain.ListingEntry, string, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, cursor)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var page []*domain.ListingEntry
	for _, e := range m.entries {
		if cursor != "" && e.SortKey <= cursor {
			continue
		}
		page = append(page, e)
		if len(page) == limit+1 {
			break
		}
	}

	next := ""
	if len(page) > limit {
		page = page[:limit]
		next = page[len(page)-1].SortKey
	}

	return page, next, nil
}

// MockIDGenerator generates deterministic sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("acc-%04d", m.counter)
}
