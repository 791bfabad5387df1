package espn

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/cache"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/riskibarqy/matchfeed/internal/platform/fetch"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
)

const (
	DefaultSiteBaseURL      = "https://site.api.espn.com/apis/site/v2"
	DefaultStandingsBaseURL = "https://site.web.api.espn.com/apis/v2"
	DefaultWebBaseURL       = "https://site.web.api.espn.com/apis/site/v2"

	matchDayLimit    = 100
	teamMatchesLimit = 1000
)

type Endpoints struct {
	SiteBaseURL      string
	StandingsBaseURL string
	WebBaseURL       string
}

func (e Endpoints) withDefaults() Endpoints {
	e.SiteBaseURL = trimBase(e.SiteBaseURL, DefaultSiteBaseURL)
	e.StandingsBaseURL = trimBase(e.StandingsBaseURL, DefaultStandingsBaseURL)
	e.WebBaseURL = trimBase(e.WebBaseURL, DefaultWebBaseURL)
	return e
}

func trimBase(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}

// DateRange is a compact YYYYMMDD pair for the scoreboard dates parameter.
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) Valid() bool {
	return r.Start != "" && r.End != ""
}

func (r DateRange) String() string {
	return r.Start + "-" + r.End
}

// URLBuilder maps an entity config onto a free-API URL. Season bounds for
// team schedules come from auxiliary lookups cached in aux.
type URLBuilder struct {
	endpoints Endpoints
	fetcher   *fetch.Fetcher
	aux       *cache.Store
	policy    resilience.RetryPolicy
	logger    *logging.Logger
}

func NewURLBuilder(endpoints Endpoints, fetcher *fetch.Fetcher, aux *cache.Store, auxPolicy resilience.RetryPolicy, logger *logging.Logger) *URLBuilder {
	if logger == nil {
		logger = logging.Default()
	}
	return &URLBuilder{
		endpoints: endpoints.withDefaults(),
		fetcher:   fetcher,
		aux:       aux,
		policy:    auxPolicy,
		logger:    logger,
	}
}

// Build returns fetch.ErrNoURL when cfg cannot be served by this API.
func (b *URLBuilder) Build(ctx context.Context, cfg sensor.Config) (string, error) {
	sport := url.PathEscape(string(cfg.Sport))
	code := url.PathEscape(strings.TrimSpace(cfg.CompetitionCode))
	configured := DateRange{Start: datefmt.CompactDate(cfg.StartDate), End: datefmt.CompactDate(cfg.EndDate)}

	switch cfg.Kind {
	case sensor.KindStandings:
		return b.StandingsURL(cfg.Sport, cfg.CompetitionCode), nil
	case sensor.KindMatchDay, sensor.KindTeamNextMatch:
		return b.scoreboardURL(sport, code, matchDayLimit, configured), nil
	case sensor.KindTeamMatches:
		return b.scoreboardURL(sport, code, teamMatchesLimit, b.SeasonRange(ctx, cfg.Sport, cfg.CompetitionCode, configured)), nil
	case sensor.KindTeamMatchesMixed:
		if strings.TrimSpace(cfg.TeamID) == "" {
			return "", fetch.ErrNoURL
		}
		return fmt.Sprintf("%s/sports/%s/all/teams/%s/schedule?fixture=true", b.endpoints.WebBaseURL, sport, url.PathEscape(cfg.TeamID)), nil
	case sensor.KindAllTodayMatches:
		return fmt.Sprintf("%s/sports/%s/all/scoreboard", b.endpoints.SiteBaseURL, sport), nil
	case sensor.KindTeamProfile:
		if strings.TrimSpace(cfg.TeamID) == "" {
			return "", fetch.ErrNoURL
		}
		return fmt.Sprintf("%s/sports/%s/%s/teams/%s", b.endpoints.SiteBaseURL, sport, code, url.PathEscape(cfg.TeamID)), nil
	default:
		return "", fetch.ErrNoURL
	}
}

func (b *URLBuilder) StandingsURL(sport sensor.Sport, code string) string {
	return fmt.Sprintf("%s/sports/%s/%s/standings", b.endpoints.StandingsBaseURL, url.PathEscape(string(sport)), url.PathEscape(code))
}

func (b *URLBuilder) CalendarURL(sport sensor.Sport, code string) string {
	return fmt.Sprintf("%s/sports/%s/%s/scoreboard", b.endpoints.SiteBaseURL, url.PathEscape(string(sport)), url.PathEscape(code))
}

func (b *URLBuilder) scoreboardURL(sport, code string, limit int, dates DateRange) string {
	return fmt.Sprintf("%s/sports/%s/%s/scoreboard?limit=%d&dates=%s", b.endpoints.SiteBaseURL, sport, code, limit, dates)
}

// SeasonRange resolves the true season bounds of a league: standings season
// first, then scoreboard calendar, then fallback. Lookup failures only log.
func (b *URLBuilder) SeasonRange(ctx context.Context, sport sensor.Sport, code string, fallback DateRange) DateRange {
	key := "season|" + string(sport) + "|" + code
	value, err := b.aux.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		r, err := b.standingsSeason(ctx, sport, code)
		if err == nil {
			return r, nil
		}
		b.logger.WarnContext(ctx, "standings season lookup failed, trying calendar", "competition", code, "error", err)

		r, err = b.Calendar(ctx, sport, code)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		b.logger.WarnContext(ctx, "season bounds unavailable, using configured window", "competition", code, "error", err)
		return fallback
	}
	r, ok := value.(DateRange)
	if !ok || !r.Valid() {
		return fallback
	}
	return r
}

func (b *URLBuilder) standingsSeason(ctx context.Context, sport sensor.Sport, code string) (DateRange, error) {
	raw, err := b.get(ctx, b.StandingsURL(sport, code), "standings_season")
	if err != nil {
		return DateRange{}, err
	}
	var payload standingsPayload
	if err := decode(raw, &payload); err != nil {
		return DateRange{}, fmt.Errorf("decode standings season: %w", err)
	}
	r := DateRange{
		Start: datefmt.CompactISODate(payload.Season.StartDate.Value),
		End:   datefmt.CompactISODate(payload.Season.EndDate.Value),
	}
	if !r.Valid() {
		return DateRange{}, fmt.Errorf("standings payload carries no season bounds")
	}
	return r, nil
}

// Calendar reads calendarStartDate/calendarEndDate from the league scoreboard.
func (b *URLBuilder) Calendar(ctx context.Context, sport sensor.Sport, code string) (DateRange, error) {
	raw, err := b.get(ctx, b.CalendarURL(sport, code), "calendar")
	if err != nil {
		return DateRange{}, err
	}
	var payload scoreboardPayload
	if err := decode(raw, &payload); err != nil {
		return DateRange{}, fmt.Errorf("decode calendar: %w", err)
	}

	start, end := payload.CalendarStartDate.Value, payload.CalendarEndDate.Value
	if (start == "" || end == "") && len(payload.Leagues) > 0 {
		start, end = payload.Leagues[0].CalendarStartDate.Value, payload.Leagues[0].CalendarEndDate.Value
	}
	r := DateRange{Start: datefmt.CompactISODate(start), End: datefmt.CompactISODate(end)}
	if !r.Valid() {
		return DateRange{}, fmt.Errorf("scoreboard carries no calendar bounds")
	}
	return r, nil
}

func (b *URLBuilder) get(ctx context.Context, rawURL, label string) ([]byte, error) {
	result, err := b.fetcher.Get(ctx, fetch.Request{URL: rawURL, Label: label}, b.policy)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}
