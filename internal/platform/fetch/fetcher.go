// Package fetch performs bounded-retry GET requests against upstream JSON APIs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
)

var (
	// ErrRateLimited ends an invocation early; the caller owns the cooldown.
	ErrRateLimited = errors.New("upstream rate limited")
	// ErrRetriesExhausted wraps the last attempt's failure.
	ErrRetriesExhausted = errors.New("upstream retries exhausted")
	// ErrNoURL marks a refresh that was skipped because no URL could be built.
	ErrNoURL = errors.New("no request url")
)

type Request struct {
	URL    string
	Header map[string]string
	// Source and Label name the request in logs and metrics.
	Source string
	Label  string
	// Validate rejects a 200 body; a rejection counts as a failed attempt.
	Validate func(body []byte) error
	// Pace admits each attempt, retries included. release runs when the
	// attempt ends.
	Pace func(ctx context.Context) (release func(), err error)
}

type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs exactly one HTTP exchange.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// AttemptObserver sees every attempt, including failed ones.
type AttemptObserver func(req Request, attempt int, status int, err error, took time.Duration)

type Result struct {
	Body       []byte
	Attempts   int
	StatusCode int
}

type Fetcher struct {
	transport Transport
	sleep     resilience.Sleeper
	observe   AttemptObserver
	logger    *logging.Logger
}

type Option func(*Fetcher)

func WithSleeper(sleep resilience.Sleeper) Option {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

func WithObserver(observe AttemptObserver) Option {
	return func(f *Fetcher) {
		f.observe = observe
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFetcher(transport Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport: transport,
		sleep:     resilience.Sleep,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get runs one fetch invocation under policy. Any non-200 status, transport
// error or timeout pauses for policy.Backoff and retries, up to
// policy.MaxAttempts. The rate limit status stops immediately with
// ErrRateLimited.
func (f *Fetcher) Get(ctx context.Context, req Request, policy resilience.RetryPolicy) (Result, error) {
	if req.URL == "" {
		return Result{}, ErrNoURL
	}
	policy = resilience.NormalizeRetryPolicy(policy)

	var (
		result  Result
		lastErr error
	)
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result.Attempts = attempt

		release := func() {}
		if req.Pace != nil {
			admitted, err := req.Pace(ctx)
			if err != nil {
				return result, fmt.Errorf("pace attempt %d: %w", attempt, err)
			}
			release = admitted
		}

		attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		started := time.Now()
		resp, err := f.transport.Do(attemptCtx, req)
		cancel()
		release()
		took := time.Since(started)

		result.StatusCode = resp.StatusCode
		if err == nil && resp.StatusCode == http.StatusOK && req.Validate != nil {
			if verr := req.Validate(resp.Body); verr != nil {
				err = fmt.Errorf("invalid body: %w", verr)
			}
		}

		if f.observe != nil {
			f.observe(req, attempt, resp.StatusCode, err, took)
		}

		switch {
		case err == nil && resp.StatusCode == http.StatusOK:
			result.Body = resp.Body
			return result, nil
		case err == nil && policy.IsRateLimited(resp.StatusCode):
			f.logger.WarnContext(ctx, "upstream rate limited",
				"source", req.Source,
				"label", req.Label,
				"url", RedactURL(req.URL),
				"attempt", attempt,
			)
			return result, fmt.Errorf("%w: status=%d", ErrRateLimited, resp.StatusCode)
		case err != nil:
			lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		default:
			lastErr = fmt.Errorf("attempt %d: status=%d body=%s", attempt, resp.StatusCode, AbbreviateBody(resp.Body))
		}

		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if attempt == policy.MaxAttempts {
			break
		}

		f.logger.DebugContext(ctx, "upstream fetch failed, backing off",
			"source", req.Source,
			"label", req.Label,
			"attempt", attempt,
			"backoff", policy.Backoff,
			"error", lastErr,
		)
		if err := f.sleep(ctx, policy.Backoff); err != nil {
			return result, err
		}
	}

	return result, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, result.Attempts, lastErr)
}
