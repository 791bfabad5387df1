package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, policy Policy, clock *fakeClock) *Store {
	t.Helper()
	store, err := NewStore(policy, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store, err := NewStore(Policy{TTL: time.Minute})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_FreshnessWindow(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)}
	store := newTestStore(t, Policy{TTL: 60 * time.Second}, clock)
	ctx := context.Background()

	store.Set(ctx, "k", "v")

	clock.Advance(59 * time.Second)
	if _, _, ok := store.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit at T+59s")
	}

	clock.Advance(time.Second)
	if _, _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss at exactly T+60s")
	}
}

func TestStore_LRUEviction(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)}
	store := newTestStore(t, Policy{TTL: time.Hour, MaxEntries: 2}, clock)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Get(ctx, "a")
	store.Set(ctx, "c", 3)

	if _, _, ok := store.Get(ctx, "b"); ok {
		t.Fatalf("expected least recently used key b to be evicted")
	}
	if _, _, ok := store.Get(ctx, "a"); !ok {
		t.Fatalf("expected key a to survive")
	}
}

func TestResponseCache_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)}
	responses := NewResponseCache(newTestStore(t, DefaultPolicy(), clock))
	ctx := context.Background()
	key := ResponseKey{Source: "espn", Kind: "standings", Competition: "ita.1"}

	if _, ok := responses.Lookup(ctx, key); ok {
		t.Fatalf("expected empty cache")
	}
	responses.Save(ctx, key, []byte(`{"children":[]}`))

	got, ok := responses.Lookup(ctx, key)
	if !ok {
		t.Fatalf("expected cached response")
	}
	if !got.FetchedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected fetched at %s", got.FetchedAt)
	}

	other := key
	other.Team = "Inter"
	if _, ok := responses.Lookup(ctx, other); ok {
		t.Fatalf("team identifier must be part of the key")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
