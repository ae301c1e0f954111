package forwarder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/tokenledger/internal/domain"
	"github.com/iho/tokenledger/internal/usecase/mocks"
)

func TestForwardOnce_PublishesAndMarksBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := feedBatch()

	feed := mocks.NewMockFeedRepository(ctrl)
	feed.EXPECT().Unforwarded(gomock.Any(), 10).Return(records, nil)
	feed.EXPECT().MarkForwarded(gomock.Any(), []int64{1, 2}, gomock.Any()).Return(nil)

	pub := &stubPublisher{}
	f := newTestForwarder(feed, pub)

	if err := f.forwardOnce(context.Background()); err != nil {
		t.Fatalf("forwardOnce failed: %v", err)
	}

	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2 records, got %#v", pub.batches)
	}
	if pub.batches[0][0].Kind != domain.EventSnapshot || pub.batches[0][1].Kind != domain.EventCredited {
		t.Fatalf("expected feed order preserved, got %v then %v", pub.batches[0][0].Kind, pub.batches[0][1].Kind)
	}
}

func TestForwardOnce_EmptyFeedIsANoop(t *testing.T) {
	ctrl := gomock.NewController(t)

	feed := mocks.NewMockFeedRepository(ctrl)
	feed.EXPECT().Unforwarded(gomock.Any(), 10).Return(nil, nil)

	pub := &stubPublisher{}
	f := newTestForwarder(feed, pub)

	if err := f.forwardOnce(context.Background()); err != nil {
		t.Fatalf("forwardOnce failed: %v", err)
	}
	if len(pub.batches) != 0 {
		t.Fatalf("expected no publishes, got %d", len(pub.batches))
	}
}

func TestForwardOnce_LeavesBatchUnforwardedWhenRetriesExhaust(t *testing.T) {
	ctrl := gomock.NewController(t)

	feed := mocks.NewMockFeedRepository(ctrl)
	feed.EXPECT().Unforwarded(gomock.Any(), 10).Return(feedBatch(), nil)
	// MarkForwarded must never be called.

	pub := &stubPublisher{err: errors.New("bus unavailable")}
	f := newTestForwarder(feed, pub)

	err := f.forwardOnce(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if pub.calls != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", pub.calls)
	}
}

func TestForwardOnce_RecoversMidRetry(t *testing.T) {
	ctrl := gomock.NewController(t)

	feed := mocks.NewMockFeedRepository(ctrl)
	feed.EXPECT().Unforwarded(gomock.Any(), 10).Return(feedBatch(), nil)
	feed.EXPECT().MarkForwarded(gomock.Any(), []int64{1, 2}, gomock.Any()).Return(nil)

	pub := &stubPublisher{err: errors.New("bus unavailable"), failFirst: 2}
	f := newTestForwarder(feed, pub)

	if err := f.forwardOnce(context.Background()); err != nil {
		t.Fatalf("forwardOnce failed: %v", err)
	}
	if pub.calls != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", pub.calls)
	}
}

func TestRun_StopsOnContextCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)

	feed := mocks.NewMockFeedRepository(ctrl)
	feed.EXPECT().Unforwarded(gomock.Any(), 10).Return(nil, nil).AnyTimes()

	f := newTestForwarder(feed, &stubPublisher{})
	f.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.Run(ctx)
	}()

	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop after cancel")
	}
}

func newTestForwarder(feed *mocks.MockFeedRepository, pub Publisher) *Forwarder {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	f := New(Config{
		Feed:        feed,
		Publisher:   pub,
		Logger:      logger,
		BatchSize:   10,
		Interval:    time.Second,
		MaxAttempts: 3,
	})
	return f
}

// feedBatch mirrors a credit that triggered compaction: snapshot then the
// mutating event, in feed order.
func feedBatch() []*domain.FeedRecord {
	now := time.Now()
	return []*domain.FeedRecord{
		{
			ID:         1,
			AccountID:  "acc-1",
			Version:    12,
			Kind:       domain.EventSnapshot,
			OccurredAt: now,
			Payload:    json.RawMessage(`{"owner_id":"o1","email":"a@x.com","balance":10,"version":12}`),
			CreatedAt:  now,
		},
		{
			ID:         2,
			AccountID:  "acc-1",
			Version:    13,
			Kind:       domain.EventCredited,
			OccurredAt: now,
			Payload:    json.RawMessage(`{"amount":1}`),
			CreatedAt:  now,
		},
	}
}

type stubPublisher struct {
	batches   [][]*domain.FeedRecord
	calls     int
	err       error
	failFirst int // fail this many calls, then succeed; 0 with err set fails always
}

func (s *stubPublisher) Publish(ctx context.Context, records []*domain.FeedRecord) error {
	s.calls++
	if s.err != nil && (s.failFirst == 0 || s.calls <= s.failFirst) {
		return s.err
	}
	s.batches = append(s.batches, records)
	return nil
}
