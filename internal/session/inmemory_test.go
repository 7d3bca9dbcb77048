package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestInMemoryStoreExpiresEntries(t *testing.T) {
	clock := newFakeClock()
	store := NewInMemoryStore(time.Minute)
	store.SetClock(clock.Now)
	var evicted []string
	store.SetEvictHook(func(id string) { evicted = append(evicted, id) })

	ctx := context.Background()
	if err := store.Set(ctx, newSession("a", clock.Now())); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}

	clock.Advance(2 * time.Minute)
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after ttl error = %v, want ErrNotFound", err)
	}
	if n := store.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("evicted = %v, want [a]", evicted)
	}
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	store := NewInMemoryStore(time.Minute)
	ctx := context.Background()
	s := newSession("a", time.Now())
	s.AppendTurn(RoleUser, "hello", 4)
	_ = store.Set(ctx, s)

	got, _ := store.Get(ctx, "a")
	got.History[0].Content = "mutated"
	again, _ := store.Get(ctx, "a")
	if again.History[0].Content != "hello" {
		t.Fatalf("stored history mutated through copy: %q", again.History[0].Content)
	}
}

func TestInMemoryStoreJanitorSweeps(t *testing.T) {
	store := NewInMemoryStore(20 * time.Millisecond)
	_ = store.Set(context.Background(), newSession("a", time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartJanitor(ctx, 10*time.Millisecond)

	time.Sleep(90 * time.Millisecond)
	store.mu.RLock()
	n := len(store.entries)
	store.mu.RUnlock()
	if n != 0 {
		t.Fatalf("entries = %d, want 0 after janitor", n)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	store := NewRedisStoreWithClient(redis.NewClient(opts), time.Minute)
	defer store.Close()

	ctx := context.Background()
	s := newSession("redis-test", time.Now().UTC())
	s.Vehicle.Make = "Ford"
	if err := store.Set(ctx, s); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.Get(ctx, "redis-test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Vehicle.Make != "Ford" {
		t.Fatalf("Vehicle.Make = %q, want Ford", got.Vehicle.Make)
	}
	if err := store.Evict(ctx, "redis-test"); err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if _, err := store.Get(ctx, "redis-test"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after evict error = %v, want ErrNotFound", err)
	}
}
