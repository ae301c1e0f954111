package forwarder

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/iho/tokenledger/internal/domain"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestStreamPublisher_SingleStream(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	pub := NewStreamPublisher(client, "tokenledger:events", false)

	if err := pub.Publish(context.Background(), feedBatch()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	msgs, err := client.XRange(context.Background(), "tokenledger:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	first := msgs[0].Values
	if first["source"] != "tokenledger" {
		t.Errorf("expected source tokenledger, got %v", first["source"])
	}
	if first["account_id"] != "acc-1" || first["kind"] != "Snapshot" {
		t.Errorf("unexpected first message: %v", first)
	}
	if first["version"] != "12" {
		t.Errorf("expected version 12, got %v", first["version"])
	}

	var snap domain.SnapshotData
	if err := json.Unmarshal([]byte(first["payload"].(string)), &snap); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if snap.Balance != 10 {
		t.Errorf("expected snapshot balance 10, got %d", snap.Balance)
	}

	if _, err := time.Parse(time.RFC3339Nano, first["occurred_at"].(string)); err != nil {
		t.Errorf("occurred_at not RFC3339: %v", err)
	}

	if msgs[1].Values["kind"] != "Credited" {
		t.Errorf("expected second message Credited, got %v", msgs[1].Values["kind"])
	}
}

func TestStreamPublisher_PerKindStreams(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	pub := NewStreamPublisher(client, "tokenledger:events", true)

	if err := pub.Publish(context.Background(), feedBatch()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	ctx := context.Background()

	snaps, err := client.XRange(ctx, "tokenledger:events:snapshot", "-", "+").Result()
	if err != nil || len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot message, got %d err=%v", len(snaps), err)
	}

	credits, err := client.XRange(ctx, "tokenledger:events:credited", "-", "+").Result()
	if err != nil || len(credits) != 1 {
		t.Fatalf("expected 1 credited message, got %d err=%v", len(credits), err)
	}

	if n, _ := client.Exists(ctx, "tokenledger:events").Result(); n != 0 {
		t.Error("base stream should be empty in per-kind mode")
	}
}

func TestLogPublisher_AcceptsBatch(t *testing.T) {
	pub := NewLogPublisher(nil)

	if err := pub.Publish(context.Background(), feedBatch()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}
