package espn

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/cache"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/riskibarqy/matchfeed/internal/platform/fetch"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

const catalogFanOut = 4

// Catalog answers the lookups a setup wizard needs: competitions, their
// teams and their calendar bounds.
type Catalog struct {
	urls    *URLBuilder
	fetcher *fetch.Fetcher
	store   *cache.Store
	policy  resilience.RetryPolicy
	logger  *logging.Logger
}

func NewCatalog(urls *URLBuilder, fetcher *fetch.Fetcher, store *cache.Store, policy resilience.RetryPolicy, logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	return &Catalog{urls: urls, fetcher: fetcher, store: store, policy: policy, logger: logger}
}

func (c *Catalog) Competitions(ctx context.Context, sport sensor.Sport) ([]usecase.CatalogCompetition, error) {
	key := "catalog|competitions|" + string(sport)
	value, err := c.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		query := url.Values{}
		query.Set("lang", "en")
		query.Set("region", "us")
		query.Set("calendartype", "whitelist")
		query.Set("limit", "200")
		query.Set("sport", string(sport))
		raw, err := c.get(ctx, c.urls.endpoints.SiteBaseURL+"/leagues/dropdown?"+query.Encode(), "catalog_competitions")
		if err != nil {
			return nil, err
		}

		var payload dropdownPayload
		if err := decode(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode competitions catalog: %w", err)
		}
		out := make([]usecase.CatalogCompetition, 0, len(payload.Leagues))
		for _, league := range payload.Leagues {
			slug := strings.TrimSpace(league.Slug.Value)
			if slug == "" {
				continue
			}
			out = append(out, usecase.CatalogCompetition{Code: slug, Name: league.Name.Or("Unknown")})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]usecase.CatalogCompetition), nil
}

func (c *Catalog) Teams(ctx context.Context, sport sensor.Sport, code string) ([]usecase.CatalogTeam, error) {
	key := "catalog|teams|" + string(sport) + "|" + code
	value, err := c.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		rawURL := fmt.Sprintf("%s/sports/%s/%s/teams", c.urls.endpoints.SiteBaseURL, url.PathEscape(string(sport)), url.PathEscape(code))
		raw, err := c.get(ctx, rawURL, "catalog_teams")
		if err != nil {
			return nil, err
		}

		var payload teamsPayload
		if err := decode(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode teams catalog: %w", err)
		}
		out := make([]usecase.CatalogTeam, 0, 32)
		if len(payload.Sports) == 0 {
			return out, nil
		}
		for _, league := range payload.Sports[0].Leagues {
			for _, item := range league.Teams {
				id := strings.TrimSpace(item.Team.ID.Value)
				if id == "" {
					continue
				}
				out = append(out, usecase.CatalogTeam{ID: id, DisplayName: item.Team.DisplayName.String(), CompetitionCode: code})
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]usecase.CatalogTeam), nil
}

// TeamsForCompetitions fans out one Teams lookup per code. A failing code is
// logged and left out rather than failing the whole batch.
func (c *Catalog) TeamsForCompetitions(ctx context.Context, sport sensor.Sport, codes []string) (map[string][]usecase.CatalogTeam, error) {
	type teamsResult struct {
		code  string
		teams []usecase.CatalogTeam
	}

	p := pool.NewWithResults[teamsResult]().WithContext(ctx).WithMaxGoroutines(catalogFanOut)
	for _, code := range codes {
		code := code
		p.Go(func(ctx context.Context) (teamsResult, error) {
			teams, err := c.Teams(ctx, sport, code)
			if err != nil {
				c.logger.WarnContext(ctx, "teams lookup failed", "competition", code, "error", err)
				return teamsResult{code: code}, nil
			}
			return teamsResult{code: code, teams: teams}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]usecase.CatalogTeam, len(results))
	for _, r := range results {
		if len(r.teams) > 0 {
			out[r.code] = r.teams
		}
	}
	return out, nil
}

func (c *Catalog) Calendar(ctx context.Context, sport sensor.Sport, code string) (usecase.CatalogCalendar, error) {
	r, err := c.urls.Calendar(ctx, sport, code)
	if err != nil {
		return usecase.CatalogCalendar{}, err
	}
	return usecase.CatalogCalendar{CompetitionCode: code, Start: isoFromCompact(r.Start), End: isoFromCompact(r.End)}, nil
}

func isoFromCompact(value string) string {
	parsed, err := time.Parse("20060102", value)
	if err != nil {
		return value
	}
	return parsed.Format(datefmt.LayoutISODate)
}

func (c *Catalog) get(ctx context.Context, rawURL, label string) ([]byte, error) {
	result, err := c.fetcher.Get(ctx, fetch.Request{URL: rawURL, Label: label}, c.policy)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}
