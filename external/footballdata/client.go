package footballdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/riskibarqy/matchfeed/internal/platform/fetch"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
)

const (
	defaultBaseURL     = "https://api.football-data.org"
	defaultMaxInFlight = 2
	defaultPerMinute   = 10
	authHeader         = "X-Auth-Token"
)

var errTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	BaseURL           string
	Token             string
	MaxInFlight       int64
	RequestsPerMinute int
	Fetcher           *fetch.Fetcher
	// LookupPolicy bounds the matchday prerequisite lookup.
	LookupPolicy   resilience.RetryPolicy
	CircuitBreaker resilience.CircuitBreakerConfig
	BreakerEvents  resilience.StateListener
	Dates          *datefmt.Normalizer
	Logger         *logging.Logger
}

// Client serves the paid competitions API. Every invocation, including the
// matchday lookup, passes the circuit breaker; every HTTP attempt passes the
// gate.
type Client struct {
	baseURL      string
	token        string
	gate         *resilience.Gate
	breaker      *resilience.CircuitBreaker
	fetcher      *fetch.Fetcher
	lookupPolicy resilience.RetryPolicy
	normalizer   *Normalizer
	logger       *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute == 0 {
		perMinute = defaultPerMinute
	}
	lookup := cfg.LookupPolicy
	if lookup.MaxAttempts == 0 {
		lookup = resilience.SingleAttemptPolicy(0)
	}

	return &Client{
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.Token),
		gate:         resilience.NewGate(maxInFlight, perMinute),
		breaker:      resilience.NewCircuitBreaker(string(sensor.SourceFootballData), cfg.CircuitBreaker, cfg.BreakerEvents),
		fetcher:      cfg.Fetcher,
		lookupPolicy: lookup,
		normalizer:   NewNormalizer(cfg.Dates),
		logger:       logger.Named("footballdata"),
	}
}

func (c *Client) Source() sensor.Source {
	return sensor.SourceFootballData
}

func (c *Client) Headers() map[string]string {
	return map[string]string{authHeader: c.token}
}

// Acquire checks the breaker for one invocation. release must be called with
// the fetch outcome.
func (c *Client) Acquire(context.Context) (func(error), error) {
	if c.token == "" {
		return nil, crerr.New("football-data token is not configured")
	}
	if err := c.breaker.Allow(); err != nil {
		return nil, crerr.Wrapf(err, "football-data circuit")
	}
	return func(callErr error) {
		c.breaker.Record(classify(callErr), isTransient)
	}, nil
}

// Pace waits for a gate slot before one HTTP attempt.
func (c *Client) Pace(ctx context.Context) (func(), error) {
	release, err := c.gate.Acquire(ctx)
	if err != nil {
		return nil, crerr.Wrap(err, "football-data gate")
	}
	return release, nil
}

// BuildURL maps a config to its endpoint. match_day first looks up the
// current matchday and fails closed with fetch.ErrNoURL when it cannot.
func (c *Client) BuildURL(ctx context.Context, cfg sensor.Config) (string, error) {
	code := url.PathEscape(strings.TrimSpace(cfg.CompetitionCode))
	switch cfg.Kind {
	case sensor.KindCompetitions:
		return c.baseURL + "/v4/competitions", nil
	case sensor.KindCompetition:
		return c.baseURL + "/v4/competitions/" + code, nil
	case sensor.KindStandings:
		u := c.baseURL + "/v4/competitions/" + code + "/standings"
		if season := SeasonYear(cfg.StartDate); season > 0 {
			u += fmt.Sprintf("?season=%d", season)
		}
		return u, nil
	case sensor.KindScorers:
		return c.baseURL + "/v4/competitions/" + code + "/scorers", nil
	case sensor.KindMatchDay:
		matchday, err := c.CurrentMatchday(ctx, cfg.CompetitionCode)
		if err != nil {
			c.logger.WarnContext(ctx, "matchday lookup failed, skipping cycle", "competition", cfg.CompetitionCode, "error", err)
			return "", crerr.Wrapf(fetch.ErrNoURL, "matchday lookup %s: %v", cfg.CompetitionCode, err)
		}
		return fmt.Sprintf("%s/v4/competitions/%s/matches?matchday=%d", c.baseURL, code, matchday), nil
	case sensor.KindTeamMatches:
		q := url.Values{}
		if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() {
			q.Set("dateFrom", cfg.StartDate.Format(sensor.DateLayout))
			q.Set("dateTo", cfg.EndDate.Format(sensor.DateLayout))
		}
		u := c.baseURL + "/v4/teams/" + url.PathEscape(strings.TrimSpace(cfg.TeamID)) + "/matches"
		if len(q) > 0 {
			u += "?" + q.Encode()
		}
		return u, nil
	case sensor.KindMatchesToday:
		return c.baseURL + "/v4/matches/", nil
	default:
		return "", crerr.Wrapf(fetch.ErrNoURL, "data kind %q is not served by %s", cfg.Kind, sensor.SourceFootballData)
	}
}

// CurrentMatchday reads currentSeason.currentMatchday of a competition.
func (c *Client) CurrentMatchday(ctx context.Context, code string) (int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, crerr.New("competition code is required")
	}

	release, err := c.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	result, err := c.fetcher.Get(ctx, fetch.Request{
		URL:    c.baseURL + "/v4/competitions/" + url.PathEscape(code),
		Header: c.Headers(),
		Source: string(sensor.SourceFootballData),
		Label:  "matchday_lookup",
		Pace:   c.Pace,
	}, c.lookupPolicy)
	release(err)
	if err != nil {
		return 0, crerr.Wrapf(classify(err), "fetch competition %s", code)
	}

	var payload competitionNode
	if err := decode(result.Body, &payload); err != nil {
		return 0, crerr.Wrapf(err, "decode competition %s", code)
	}
	if payload.CurrentSeason == nil || deref(payload.CurrentSeason.CurrentMatchday, 0) <= 0 {
		return 0, crerr.Newf("competition %s has no current matchday", code)
	}
	return *payload.CurrentSeason.CurrentMatchday, nil
}

// SeasonYear is the season the paid API files a date under: seasons start in
// July, so spring dates belong to the previous year's season.
func SeasonYear(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}

// classify marks errors worth opening the breaker for.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	if stderrors.Is(err, fetch.ErrRetriesExhausted) || stderrors.Is(err, fetch.ErrRateLimited) {
		return crerr.Mark(err, errTransient)
	}
	return err
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}
