package resilience

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Gate caps in-flight calls to a volume-limited API and paces request starts.
type Gate struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewGate allows maxInFlight concurrent calls and perMinute request starts.
// perMinute <= 0 disables pacing.
func NewGate(maxInFlight int64, perMinute int) *Gate {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	g := &Gate{sem: semaphore.NewWeighted(maxInFlight)}
	if perMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return g
}

// Acquire blocks until a slot is free and the pacer admits a request.
// The returned release must be called exactly once.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire gate slot: %w", err)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.sem.Release(1)
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}
	return func() { g.sem.Release(1) }, nil
}
