package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/cache"
	"github.com/riskibarqy/matchfeed/internal/platform/fetch"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/metrics"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
)

type RefreshOutcome string

const (
	OutcomeCacheHit    RefreshOutcome = "cache_hit"
	OutcomeUpdated     RefreshOutcome = "updated"
	OutcomeSkipped     RefreshOutcome = "skipped"
	OutcomeRateLimited RefreshOutcome = "rate_limited"
	OutcomeFailed      RefreshOutcome = "failed"
)

// Refresher is what the scheduler and the service need from the controller.
type Refresher interface {
	Refresh(ctx context.Context, e *Entity) RefreshOutcome
}

type RefreshControllerConfig struct {
	Providers []Provider
	Responses *cache.ResponseCache
	Fetcher   *fetch.Fetcher
	Policy    resilience.RetryPolicy
	Sleeper   resilience.Sleeper
	Metrics   *metrics.Collector
	Logger    *logging.Logger
	Now       func() time.Time
}

// RefreshController runs one refresh invocation per call:
// check cache, build URL, fetch with retry, normalize.
type RefreshController struct {
	providers map[sensor.Source]Provider
	responses *cache.ResponseCache
	fetcher   *fetch.Fetcher
	policy    resilience.RetryPolicy
	sleep     resilience.Sleeper
	metrics   *metrics.Collector
	logger    *logging.Logger
	now       func() time.Time
}

func NewRefreshController(cfg RefreshControllerConfig) *RefreshController {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	sleep := cfg.Sleeper
	if sleep == nil {
		sleep = resilience.Sleep
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	providers := make(map[sensor.Source]Provider, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p != nil {
			providers[p.Source()] = p
		}
	}

	return &RefreshController{
		providers: providers,
		responses: cfg.Responses,
		fetcher:   cfg.Fetcher,
		policy:    resilience.NormalizeRetryPolicy(cfg.Policy),
		sleep:     sleep,
		metrics:   cfg.Metrics,
		logger:    logger.Named("refresh"),
		now:       now,
	}
}

// Refresh never returns an error: every failure keeps the previous result
// or, on rate limiting, clears it.
func (c *RefreshController) Refresh(ctx context.Context, e *Entity) RefreshOutcome {
	cfg := e.Config()
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshController.Refresh", sensorAttributes(cfg)...)
	defer span.End()

	outcome := c.refresh(ctx, e, cfg)
	c.metrics.Refresh(string(cfg.Kind), string(outcome))
	return outcome
}

func (c *RefreshController) refresh(ctx context.Context, e *Entity, cfg sensor.Config) RefreshOutcome {
	logger := c.logger.With("sensor_id", cfg.ID, "kind", string(cfg.Kind))

	provider, ok := c.providers[cfg.Source]
	if !ok {
		logger.ErrorContext(ctx, "no provider registered for source", "source", string(cfg.Source))
		return OutcomeFailed
	}

	key := responseKey(cfg)
	if cached, hit := c.responses.Lookup(ctx, key); hit {
		c.metrics.CacheLookup(true)
		logger.DebugContext(ctx, "using cached payload", "age", c.now().Sub(cached.FetchedAt))
		c.normalize(ctx, logger, provider, e, cfg, cached.Raw)
		return OutcomeCacheHit
	}
	c.metrics.CacheLookup(false)

	rawURL, err := provider.BuildURL(ctx, cfg)
	if err != nil {
		if errors.Is(err, fetch.ErrNoURL) {
			logger.DebugContext(ctx, "no url for this cycle, skipping")
		} else {
			logger.WarnContext(ctx, "build url failed, skipping", "error", err)
		}
		return OutcomeSkipped
	}

	release, err := provider.Acquire(ctx)
	if err != nil {
		logger.WarnContext(ctx, "upstream admission denied, keeping previous result", "error", err)
		return OutcomeFailed
	}

	e.markRequest(c.now())
	result, err := c.fetcher.Get(ctx, fetch.Request{
		URL:      rawURL,
		Header:   provider.Headers(),
		Source:   string(cfg.Source),
		Label:    string(cfg.Kind),
		Validate: validateJSON,
		Pace:     provider.Pace,
	}, c.policy)
	release(err)

	switch {
	case errors.Is(err, fetch.ErrRateLimited):
		e.clear()
		logger.WarnContext(ctx, "rate limited, clearing state", "cooldown", c.policy.RateLimitCooldown)
		if sleepErr := c.sleep(ctx, c.policy.RateLimitCooldown); sleepErr != nil {
			logger.DebugContext(ctx, "cooldown interrupted", "error", sleepErr)
		}
		return OutcomeRateLimited
	case err != nil:
		logger.WarnContext(ctx, "fetch failed, keeping previous result", "attempts", result.Attempts, "error", err)
		return OutcomeFailed
	}

	c.responses.Save(ctx, key, result.Body)
	c.normalize(ctx, logger, provider, e, cfg, result.Body)
	logger.InfoContext(ctx, "sensor updated", "attempts", result.Attempts)
	return OutcomeUpdated
}

func (c *RefreshController) normalize(ctx context.Context, logger *logging.Logger, provider Provider, e *Entity, cfg sensor.Config, raw []byte) {
	now := c.now()
	result, err := provider.Normalize(ctx, cfg, raw, now)
	if err != nil {
		logger.WarnContext(ctx, "normalize payload failed, publishing defaults", "error", err)
	}
	e.apply(result, now)
}

func responseKey(cfg sensor.Config) cache.ResponseKey {
	return cache.ResponseKey{
		Source:      string(cfg.Source),
		Kind:        string(cfg.Kind),
		Competition: cfg.CompetitionCode,
		Team:        cfg.TeamIdentifier(),
	}
}

func validateJSON(body []byte) error {
	if !sonic.Valid(body) {
		return fmt.Errorf("response is not valid json")
	}
	return nil
}
