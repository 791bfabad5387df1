package espn

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
)

const (
	StateStandings     = "Standings"
	StateMatchesOfWeek = "Matches of the Week"
	StateTodayMatches  = "Today's matches"
	StateNoMatch       = "No match available"
)

// Provider serves the free scoreboard API to the refresh controller.
type Provider struct {
	urls         *URLBuilder
	normalizer   *Normalizer
	targetSeason int
}

func NewProvider(urls *URLBuilder, normalizer *Normalizer, targetSeason int) *Provider {
	return &Provider{urls: urls, normalizer: normalizer, targetSeason: targetSeason}
}

func (p *Provider) Source() sensor.Source {
	return sensor.SourceESPN
}

func (p *Provider) BuildURL(ctx context.Context, cfg sensor.Config) (string, error) {
	return p.urls.Build(ctx, cfg)
}

func (p *Provider) Headers() map[string]string {
	return nil
}

// Acquire never blocks; the free API is only staggered by scheduler jitter.
func (p *Provider) Acquire(context.Context) (func(error), error) {
	return func(error) {}, nil
}

func (p *Provider) Pace(context.Context) (func(), error) {
	return func() {}, nil
}

// Normalize always returns a usable result. On a malformed payload the
// result carries the kind's label with empty attributes, alongside the error.
func (p *Provider) Normalize(_ context.Context, cfg sensor.Config, raw []byte, now time.Time) (sensor.Result, error) {
	switch cfg.Kind {
	case sensor.KindStandings:
		return p.standings(raw)
	case sensor.KindMatchDay:
		return p.matchList(raw, StateMatchesOfWeek, MatchFilter{Start: cfg.StartDate, End: cfg.WindowEnd()})
	case sensor.KindAllTodayMatches:
		return p.matchList(raw, StateTodayMatches, MatchFilter{})
	case sensor.KindTeamMatches, sensor.KindTeamMatchesMixed:
		return p.teamMatches(raw, MatchFilter{Team: cfg.TeamName, Start: cfg.StartDate, End: cfg.WindowEnd()})
	case sensor.KindTeamNextMatch:
		return p.nextMatch(raw, MatchFilter{Team: cfg.TeamName, Start: cfg.StartDate, End: cfg.WindowEnd(), NextOnly: true, Now: now})
	case sensor.KindTeamProfile:
		return p.teamProfile(raw)
	default:
		return sensor.Result{}, fmt.Errorf("data kind %q is not served by %s", cfg.Kind, sensor.SourceESPN)
	}
}

func (p *Provider) standings(raw []byte) (sensor.Result, error) {
	table, err := p.normalizer.NormalizeStandings(raw, p.targetSeason)
	if err != nil {
		return emptyResult(StateStandings), err
	}
	attrs := map[string]any{
		"standings":       table.Rows,
		"season":          table.Season.DisplayName,
		"season_start":    table.Season.Start,
		"season_end":      table.Season.End,
		"full_table_link": table.FullTableLink,
	}
	if len(table.Groups) > 0 {
		attrs["standings_groups"] = table.Groups
	}
	return sensor.Result{State: StateStandings, Attributes: attrs}, nil
}

func (p *Provider) matchList(raw []byte, state string, filter MatchFilter) (sensor.Result, error) {
	set, err := p.normalizer.NormalizeMatches(raw, filter)
	if err != nil {
		return emptyResult(state), err
	}
	return sensor.Result{
		State: state,
		Attributes: map[string]any{
			"league_info": set.LeagueInfo,
			"matches":     set.Matches,
		},
	}, nil
}

func (p *Provider) teamMatches(raw []byte, filter MatchFilter) (sensor.Result, error) {
	set, err := p.normalizer.NormalizeMatches(raw, filter)
	if err != nil {
		return emptyResult(""), err
	}
	state := fmt.Sprintf("%d matches for %s", len(set.Matches), set.TeamName)
	if live, ok := match.FirstLive(set.Matches); ok {
		state = LiveState(live)
	}
	return sensor.Result{State: state, Attributes: teamAttributes(set)}, nil
}

func (p *Provider) nextMatch(raw []byte, filter MatchFilter) (sensor.Result, error) {
	set, err := p.normalizer.NormalizeMatches(raw, filter)
	if err != nil {
		return emptyResult(StateNoMatch), err
	}
	if len(set.Matches) == 0 {
		return sensor.Result{State: StateNoMatch, Attributes: teamAttributes(set)}, nil
	}
	next := set.Matches[0]
	state := fmt.Sprintf("Next match: %s vs %s", next.HomeTeam, next.AwayTeam)
	if next.State == match.StateIn {
		state = LiveState(next)
	}
	return sensor.Result{State: state, Attributes: teamAttributes(set)}, nil
}

func (p *Provider) teamProfile(raw []byte) (sensor.Result, error) {
	profile, err := p.normalizer.NormalizeTeamProfile(raw)
	if err != nil {
		return emptyResult(""), err
	}
	attrs := map[string]any{
		"team_name":      profile.TeamName,
		"logo_default":   profile.LogoDefault,
		"logo_dark":      profile.LogoDark,
		"overall_record": profile.OverallRecord,
	}
	state := profile.TeamName
	if next := profile.NextEvent; next != nil {
		attrs["next_event_name"] = next.Name
		attrs["next_event_date"] = next.Date
		attrs["venue"] = next.Venue
		attrs["home_team"] = next.HomeTeam
		attrs["home_team_logo"] = next.HomeTeamLogo
		attrs["away_team"] = next.AwayTeam
		attrs["away_team_logo"] = next.AwayTeamLogo
		attrs["home_odds"] = next.HomeOdds
		attrs["away_odds"] = next.AwayOdds
		state = "Next match: " + next.Name
	}
	return sensor.Result{State: state, Attributes: attrs}, nil
}

// LiveState renders "{home score} - {away score} ({clock})".
func LiveState(r match.Record) string {
	return fmt.Sprintf("%s - %s (%s)", r.HomeScore, r.AwayScore, r.Clock)
}

func teamAttributes(set MatchSet) map[string]any {
	return map[string]any{
		"league_info": set.LeagueInfo,
		"team_name":   set.TeamName,
		"team_logo":   set.TeamLogo,
		"matches":     set.Matches,
	}
}

func emptyResult(state string) sensor.Result {
	return sensor.Result{State: state, Attributes: map[string]any{}}
}
