package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/matchfeed/external/espn"
	"github.com/riskibarqy/matchfeed/external/footballdata"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchfeed/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchfeed/internal/platform/cache"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/riskibarqy/matchfeed/internal/platform/fetch"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/metrics"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

// App owns the HTTP server and the background refresh machinery.
type App struct {
	Server *http.Server

	sensors   *usecase.SensorService
	scheduler *usecase.Scheduler
	db        *sqlx.DB
	logger    *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	dates, err := datefmt.LoadNormalizer(cfg.HostTimeZone)
	if err != nil {
		return nil, fmt.Errorf("load host time zone: %w", err)
	}

	var (
		collector      *metrics.Collector
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector, err = metrics.New(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	fetcher := fetch.NewFetcher(
		fetch.NewTransport(cfg.FetchTransport),
		fetch.WithLogger(logger),
		fetch.WithObserver(fetchObserver(collector)),
	)
	policy := resilience.RetryPolicy{
		MaxAttempts:       cfg.FetchMaxAttempts,
		Backoff:           cfg.FetchBackoff,
		Timeout:           cfg.FetchTimeout,
		RateLimitCooldown: cfg.FetchRateLimitCooldown,
		RateLimitStatus:   http.StatusTooManyRequests,
	}
	lookups := lookupPolicy(cfg)

	cachePolicy := cache.Policy{TTL: cfg.CacheTTL, MaxEntries: cfg.CacheMaxEntries}
	responseStore, err := cache.NewStore(cachePolicy)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}
	auxStore, err := cache.NewStore(cachePolicy)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}

	urls := espn.NewURLBuilder(espn.Endpoints{
		SiteBaseURL:      cfg.ESPNSiteBaseURL,
		StandingsBaseURL: cfg.ESPNStandingsBaseURL,
		WebBaseURL:       cfg.ESPNWebBaseURL,
	}, fetcher, auxStore, lookups, logger)
	providers := []usecase.Provider{
		espn.NewProvider(urls, espn.NewNormalizer(dates, logger), cfg.StandingsTargetSeason),
	}
	if cfg.FootballDataEnabled {
		providers = append(providers, footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:           cfg.FootballDataBaseURL,
			Token:             cfg.FootballDataToken,
			MaxInFlight:       int64(cfg.FootballDataMaxInFlight),
			RequestsPerMinute: cfg.FootballDataRequestsPerMinute,
			Fetcher:           fetcher,
			LookupPolicy:      lookups,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FootballDataCircuitEnabled,
				FailureThreshold: cfg.FootballDataCircuitFailures,
				OpenTimeout:      cfg.FootballDataCircuitOpenTime,
				HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpen,
			},
			BreakerEvents: func(name string, _, to resilience.CircuitState) {
				collector.BreakerState(name, to != resilience.CircuitStateClosed)
			},
			Dates:  dates,
			Logger: logger,
		}))
	}

	refresher := usecase.NewRefreshController(usecase.RefreshControllerConfig{
		Providers: providers,
		Responses: cache.NewResponseCache(responseStore),
		Fetcher:   fetcher,
		Policy:    policy,
		Metrics:   collector,
		Logger:    logger,
	})

	a := &App{logger: logger.Named("app")}

	repo, err := a.openRepository(cfg)
	if err != nil {
		return nil, err
	}

	var scheduler usecase.EntityScheduler
	if cfg.SchedulerEnabled {
		a.scheduler, err = usecase.NewScheduler(refresher, usecase.SchedulerConfig{
			Workers:   cfg.SchedulerWorkers,
			MaxJitter: cfg.SchedulerMaxJitter,
			Logger:    logger,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		scheduler = a.scheduler
	}

	a.sensors = usecase.NewSensorService(repo, refresher, scheduler, usecase.SensorServiceConfig{
		DefaultPollInterval: cfg.DefaultPollInterval,
		Logger:              logger,
	})
	catalog := usecase.NewCatalogService(espn.NewCatalog(urls, fetcher, auxStore, lookups, logger))

	handler := httpapi.NewHandler(a.sensors, catalog, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
		Metrics:            metricsHandler,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

func (a *App) openRepository(cfg config.Config) (sensor.Repository, error) {
	if cfg.SensorStore != config.StorePostgres {
		return memory.NewSensorConfigRepository(nil), nil
	}

	db, err := openPostgres(cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	return postgres.NewSensorConfigRepository(db), nil
}

// Start restores persisted sensors and launches the scheduler. Loops for
// restored sensors begin once the scheduler starts.
func (a *App) Start(ctx context.Context) error {
	restored, err := a.sensors.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore sensors: %w", err)
	}
	a.logger.Info("sensors restored", "count", restored)

	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}
	return nil
}

// Close stops every refresh loop and releases the database handle.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database failed", "error", err)
		}
	}
}

// lookupPolicy gives season, catalog and matchday lookups one attempt each.
func lookupPolicy(cfg config.Config) resilience.RetryPolicy {
	return resilience.SingleAttemptPolicy(cfg.FetchTimeout)
}

func fetchObserver(collector *metrics.Collector) fetch.AttemptObserver {
	return func(req fetch.Request, _ int, status int, err error, took time.Duration) {
		source := req.Source
		if source == "" {
			source = "lookup"
		}
		collector.FetchAttempt(source, req.Label, attemptOutcome(status, err), took)
	}
}

func attemptOutcome(status int, err error) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case err != nil && status == 0:
		return "error"
	case err != nil:
		return "status_" + strconv.Itoa(status)
	default:
		return "ok"
	}
}
