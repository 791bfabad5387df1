package cache

import (
	"context"
	"strings"
	"time"
)

// ResponseKey identifies an upstream payload independent of which entity asked for it.
type ResponseKey struct {
	Source      string
	Kind        string
	Competition string
	Team        string
}

func (k ResponseKey) String() string {
	return strings.Join([]string{"resp", k.Source, k.Kind, k.Competition, k.Team}, "|")
}

// Response is a raw upstream body plus the moment it was fetched.
type Response struct {
	Raw       []byte
	FetchedAt time.Time
}

// ResponseCache shares raw payloads between entities with the same key.
type ResponseCache struct {
	store *Store
}

func NewResponseCache(store *Store) *ResponseCache {
	return &ResponseCache{store: store}
}

func (c *ResponseCache) Lookup(ctx context.Context, key ResponseKey) (Response, bool) {
	value, storedAt, ok := c.store.Get(ctx, key.String())
	if !ok {
		return Response{}, false
	}
	raw, ok := value.([]byte)
	if !ok {
		return Response{}, false
	}
	return Response{Raw: raw, FetchedAt: storedAt}, true
}

func (c *ResponseCache) Save(ctx context.Context, key ResponseKey, raw []byte) {
	c.store.Set(ctx, key.String(), raw)
}
