package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                 config.EnvDev,
		ServiceName:            "matchfeed",
		HTTPAddr:               ":0",
		ReadTimeout:            time.Second,
		WriteTimeout:           time.Second,
		CORSAllowedOrigins:     []string{"*"},
		HostTimeZone:           "UTC",
		SensorStore:            config.StoreMemory,
		CacheTTL:               time.Minute,
		CacheMaxEntries:        64,
		FetchMaxAttempts:       3,
		FetchBackoff:           time.Millisecond,
		FetchTimeout:           time.Second,
		FetchRateLimitCooldown: time.Minute,
		FetchTransport:         "nethttp",
		ESPNSiteBaseURL:        "http://127.0.0.1:1",
		ESPNStandingsBaseURL:   "http://127.0.0.1:1",
		ESPNWebBaseURL:         "http://127.0.0.1:1",
		SchedulerEnabled:       true,
		SchedulerWorkers:       2,
		DefaultPollInterval:    3 * time.Minute,
		MetricsEnabled:         true,
	}
}

func TestNew_ServesHealthAndMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.FootballDataEnabled = true
	cfg.FootballDataBaseURL = "http://127.0.0.1:1"
	cfg.FootballDataToken = "token"
	cfg.FootballDataCircuitEnabled = true
	cfg.FootballDataCircuitFailures = 3
	cfg.FootballDataCircuitOpenTime = time.Minute
	cfg.FootballDataCircuitHalfOpen = 1

	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sensors", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""
	_, err := New(cfg, logging.NewNop())
	require.Error(t, err)

	cfg = testConfig()
	cfg.HostTimeZone = "Mars/Olympus"
	_, err = New(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNew_LookupsMakeSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.SchedulerEnabled = false
	cfg.FetchBackoff = time.Second
	cfg.ESPNSiteBaseURL = upstream.URL
	cfg.ESPNStandingsBaseURL = upstream.URL
	cfg.ESPNWebBaseURL = upstream.URL

	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	start := time.Now()
	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/competitions", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), calls.Load())

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/competitions/ita.1/calendar", nil))
	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, time.Since(start), cfg.FetchBackoff, "lookups never back off")
}

func TestLookupPolicy(t *testing.T) {
	cfg := testConfig()
	p := lookupPolicy(cfg)
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, cfg.FetchTimeout, p.Timeout)
	assert.Zero(t, p.RateLimitCooldown)
}

func TestAttemptOutcome(t *testing.T) {
	assert.Equal(t, "ok", attemptOutcome(http.StatusOK, nil))
	assert.Equal(t, "rate_limited", attemptOutcome(http.StatusTooManyRequests, errors.New("limited")))
	assert.Equal(t, "status_503", attemptOutcome(http.StatusServiceUnavailable, errors.New("unavailable")))
	assert.Equal(t, "error", attemptOutcome(0, errors.New("dial")))
}
