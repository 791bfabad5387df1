package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

const defaultMaxEntries = 512

// Policy is the freshness contract of a Store. An entry is served while its
// age is strictly below TTL; MaxEntries bounds memory via LRU eviction.
type Policy struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultPolicy() Policy {
	return Policy{TTL: 60 * time.Second, MaxEntries: defaultMaxEntries}
}

type entry struct {
	value    any
	storedAt time.Time
}

// Store is a process-wide TTL cache with last-write-wins semantics.
type Store struct {
	entries *lru.Cache
	policy  Policy
	now     func() time.Time
	flight  singleflight.Group
}

type Option func(*Store)

// WithClock overrides time.Now, mainly for freshness tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(policy Policy, opts ...Option) (*Store, error) {
	if policy.MaxEntries <= 0 {
		policy.MaxEntries = defaultMaxEntries
	}
	entries, err := lru.New(policy.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	s := &Store{
		entries: entries,
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns the value and the time it was stored.
func (s *Store) Get(_ context.Context, key string) (any, time.Time, bool) {
	if key == "" {
		return nil, time.Time{}, false
	}

	raw, ok := s.entries.Get(key)
	if !ok {
		return nil, time.Time{}, false
	}
	e, ok := raw.(entry)
	if !ok {
		s.entries.Remove(key)
		return nil, time.Time{}, false
	}
	if !s.fresh(e) {
		s.entries.Remove(key)
		return nil, time.Time{}, false
	}

	return e.value, e.storedAt, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	s.entries.Add(key, entry{value: value, storedAt: s.now()})
}

// GetOrLoad collapses concurrent misses for the same key into one loader call.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, _, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, _, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) fresh(e entry) bool {
	if s.policy.TTL <= 0 {
		return true
	}
	return s.now().Sub(e.storedAt) < s.policy.TTL
}
