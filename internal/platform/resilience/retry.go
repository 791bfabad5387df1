package resilience

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy bounds one upstream fetch: attempts, per-attempt timeout,
// pause between attempts and the cooldown applied on rate limiting.
type RetryPolicy struct {
	MaxAttempts       int
	Backoff           time.Duration
	Timeout           time.Duration
	RateLimitCooldown time.Duration
	// RateLimitStatus ends the invocation instead of retrying.
	RateLimitStatus int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		Backoff:           5 * time.Second,
		Timeout:           10 * time.Second,
		RateLimitCooldown: 60 * time.Second,
		RateLimitStatus:   http.StatusTooManyRequests,
	}
}

// SingleAttemptPolicy is used for auxiliary lookups that degrade to a fallback.
func SingleAttemptPolicy(timeout time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.MaxAttempts = 1
	p.RateLimitCooldown = 0
	if timeout > 0 {
		p.Timeout = timeout
	}
	return p
}

func NormalizeRetryPolicy(p RetryPolicy) RetryPolicy {
	defaults := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = defaults.Timeout
	}
	if p.RateLimitCooldown < 0 {
		p.RateLimitCooldown = 0
	}
	if p.RateLimitStatus == 0 {
		p.RateLimitStatus = defaults.RateLimitStatus
	}
	return p
}

// IsRateLimited reports whether status should end the invocation with a cooldown.
func (p RetryPolicy) IsRateLimited(status int) bool {
	return status == p.RateLimitStatus
}

// Sleeper pauses for d or until ctx is done. Tests swap it for a recorder.
type Sleeper func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
