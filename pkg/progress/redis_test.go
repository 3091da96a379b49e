package progress

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// Runs against a real server when SPOTLIGHT_TEST_REDIS_ADDR is set.
func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("SPOTLIGHT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SPOTLIGHT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	b, err := OpenRedis(ctx, addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("OpenRedis failed: %v", err)
	}
	defer b.Close()

	s := New(b, NewSessionID())
	if !s.MarkComplete("client", "book") || s.MarkComplete("client", "book") {
		t.Error("Expected exactly one first completion")
	}
	s.RequestAutoStart("t")
	if id, ok := s.ConsumeAutoStart(); !ok || id != "t" {
		t.Errorf("Expected t, got %q %v", id, ok)
	}
	if _, ok := s.ConsumeAutoStart(); ok {
		t.Error("Expected auto-start consumed once")
	}

	// Every write slides the whole session's expiry.
	hash := hashKey(s.key("dismissed"))
	if err := b.client.PExpire(ctx, hash, time.Second).Err(); err != nil {
		t.Fatal(err)
	}
	s.Dismiss()
	if ttl := b.client.PTTL(ctx, hash).Val(); ttl <= time.Second {
		t.Errorf("Expected the session ttl refreshed to about a minute, got %v", ttl)
	}

	s.Clear("client", []tour.ChecklistItem{{ID: "book"}})
	if New(b, s.Session()).IsComplete("client", "book") {
		t.Error("Expected cleared item gone from redis")
	}
}

func TestOpenRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := OpenRedis(ctx, "127.0.0.1:1", "", 0, 0); err == nil {
		t.Error("Expected error for unreachable redis")
	}
}
