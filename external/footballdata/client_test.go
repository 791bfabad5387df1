package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/fetch"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	fetcher := fetch.NewFetcher(
		fetch.NewHTTPTransport(http.DefaultClient),
		fetch.WithLogger(logging.NewNop()),
		fetch.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
	return NewClient(ClientConfig{
		BaseURL:           baseURL,
		Token:             "secret-token",
		RequestsPerMinute: -1,
		Fetcher:           fetcher,
		CircuitBreaker:    breaker,
		Logger:            logging.NewNop(),
	})
}

func paidConfig(kind sensor.DataKind) sensor.Config {
	return sensor.Config{
		Name:            "matchfeed_fd_test",
		Source:          sensor.SourceFootballData,
		Sport:           sensor.SportSoccer,
		Kind:            kind,
		CompetitionCode: "SA",
		TeamID:          "108",
		StartDate:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		PollInterval:    sensor.DefaultPollInterval,
	}
}

func TestClient_BuildURLStaticKinds(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "https://api.test", resilience.CircuitBreakerConfig{})
	tests := []struct {
		kind sensor.DataKind
		want string
	}{
		{sensor.KindCompetitions, "https://api.test/v4/competitions"},
		{sensor.KindCompetition, "https://api.test/v4/competitions/SA"},
		{sensor.KindStandings, "https://api.test/v4/competitions/SA/standings?season=2024"},
		{sensor.KindScorers, "https://api.test/v4/competitions/SA/scorers"},
		{sensor.KindTeamMatches, "https://api.test/v4/teams/108/matches?dateFrom=2025-02-01&dateTo=2025-03-31"},
		{sensor.KindMatchesToday, "https://api.test/v4/matches/"},
	}
	for _, tt := range tests {
		got, err := client.BuildURL(context.Background(), paidConfig(tt.kind))
		require.NoError(t, err, tt.kind)
		assert.Equal(t, tt.want, got, tt.kind)
	}

	_, err := client.BuildURL(context.Background(), paidConfig(sensor.KindTeamNextMatch))
	require.ErrorIs(t, err, fetch.ErrNoURL)
}

func TestClient_MatchDayLooksUpCurrentMatchday(t *testing.T) {
	t.Parallel()

	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "secret-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		lookups.Add(1)
		_, _ = w.Write([]byte(`{"id":2019,"name":"Serie A","code":"SA","currentSeason":{"startDate":"2024-08-18","endDate":"2025-05-25","currentMatchday":27}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})
	got, err := client.BuildURL(context.Background(), paidConfig(sensor.KindMatchDay))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/v4/competitions/SA/matches?matchday=27", got)
	assert.EqualValues(t, 1, lookups.Load())
}

func TestClient_MatchDayFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "lookup error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "no matchday",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":2001,"code":"CL","currentSeason":{"currentMatchday":null}}`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := newTestClient(t, srv.URL, resilience.CircuitBreakerConfig{})
			got, err := client.BuildURL(context.Background(), paidConfig(sensor.KindMatchDay))
			require.ErrorIs(t, err, fetch.ErrNoURL)
			assert.Empty(t, got)
		})
	}
}

func TestClient_AcquireRequiresToken(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	_, err := client.Acquire(context.Background())
	require.Error(t, err)
}

func TestClient_BreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "https://api.test", resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		release, err := client.Acquire(ctx)
		require.NoError(t, err)
		release(fetch.ErrRetriesExhausted)
	}
	assert.Equal(t, resilience.CircuitStateOpen, client.breaker.State())

	_, err := client.Acquire(ctx)
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestClient_NonTransientErrorsKeepBreakerClosed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "https://api.test", resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Hour,
	})
	release, err := client.Acquire(context.Background())
	require.NoError(t, err)
	release(errors.New("decode failure"))

	assert.Equal(t, resilience.CircuitStateClosed, client.breaker.State())
}

func TestClient_LookupRetriesArePaced(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	lookup := resilience.DefaultRetryPolicy()
	lookup.Backoff = time.Millisecond
	client := NewClient(ClientConfig{
		BaseURL:           srv.URL,
		Token:             "secret-token",
		RequestsPerMinute: 2,
		LookupPolicy:      lookup,
		Fetcher: fetch.NewFetcher(
			fetch.NewHTTPTransport(http.DefaultClient),
			fetch.WithLogger(logging.NewNop()),
			fetch.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		),
		Logger: logging.NewNop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := client.CurrentMatchday(ctx, "SA")
	require.ErrorContains(t, err, "gate")
	assert.Equal(t, int32(2), calls.Load(), "third attempt waits on the per-minute quota")
}

func TestClient_HeadersCarryToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "", resilience.CircuitBreakerConfig{})
	assert.Equal(t, map[string]string{"X-Auth-Token": "secret-token"}, client.Headers())
	assert.Equal(t, sensor.SourceFootballData, client.Source())
}

func TestSeasonYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2024, SeasonYear(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonYear(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, SeasonYear(time.Time{}))
}
