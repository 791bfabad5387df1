package espn

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/standing"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

// Normalizer turns scoreboard, standings and team payloads into the
// canonical records. It is safe for concurrent use.
type Normalizer struct {
	dates  *datefmt.Normalizer
	logger *logging.Logger
	now    func() time.Time
}

func NewNormalizer(dates *datefmt.Normalizer, logger *logging.Logger) *Normalizer {
	if dates == nil {
		dates = datefmt.NewNormalizer(time.UTC)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{dates: dates, logger: logger, now: time.Now}
}

// MatchFilter narrows a scoreboard payload. Zero values disable a filter.
type MatchFilter struct {
	Team     string
	Start    time.Time
	End      time.Time
	NextOnly bool
	Now      time.Time
}

type MatchSet struct {
	Matches    []match.Record
	LeagueInfo []match.LeagueInfo
	TeamName   string
	TeamLogo   string
}

func (n *Normalizer) NormalizeMatches(raw []byte, filter MatchFilter) (MatchSet, error) {
	var payload scoreboardPayload
	if err := decode(raw, &payload); err != nil {
		return MatchSet{}, fmt.Errorf("decode scoreboard payload: %w", err)
	}

	set := MatchSet{
		Matches:    make([]match.Record, 0, len(payload.Events)),
		LeagueInfo: ExtractLeagueInfo(payload.Leagues, n.dates),
		TeamName:   "All matches",
		TeamLogo:   notAvailable,
	}
	team := strings.ToLower(strings.TrimSpace(filter.Team))
	if team != "" {
		set.TeamName = filter.Team
	}

	for _, event := range payload.Events {
		if team != "" && !strings.Contains(strings.ToLower(event.Name.Value), team) {
			continue
		}
		if len(event.Competitions) == 0 || len(event.Competitions[0].Competitors) < 2 {
			n.logger.Warn("skip event without two competitors", "event_id", event.ID.Value, "event", event.Name.Value)
			continue
		}

		kickoff, hasKickoff := datefmt.ParseTimestamp(event.Date.Value)
		if !hasKickoff {
			kickoff, hasKickoff = datefmt.ParseTimestamp(event.Competitions[0].Date.Value)
		}
		if !inWindow(kickoff, hasKickoff, filter.Start, filter.End) {
			continue
		}

		record := n.matchRecord(event, kickoff)
		if team != "" && set.TeamLogo == notAvailable {
			switch {
			case strings.Contains(strings.ToLower(record.HomeTeam), team):
				set.TeamLogo = record.HomeLogo
			case strings.Contains(strings.ToLower(record.AwayTeam), team):
				set.TeamLogo = record.AwayLogo
			}
		}
		set.Matches = append(set.Matches, record)
	}

	if filter.NextOnly {
		now := filter.Now
		if now.IsZero() {
			now = n.now()
		}
		set.Matches = match.SelectNext(set.Matches, now)
		if set.Matches == nil {
			set.Matches = []match.Record{}
		}
	}
	return set, nil
}

func inWindow(kickoff time.Time, ok bool, start, end time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	if !ok {
		return false
	}
	if !start.IsZero() && kickoff.Before(start) {
		return false
	}
	if !end.IsZero() && kickoff.After(end) {
		return false
	}
	return true
}

func (n *Normalizer) matchRecord(event eventNode, kickoff time.Time) match.Record {
	competition := event.Competitions[0]
	home, away := splitCompetitors(competition.Competitors)
	status := event.status()

	record := match.Record{
		Name:           event.Name.String(),
		Date:           n.dates.Format(event.Date.Or(competition.Date.Value), true),
		HomeTeam:       home.Team.DisplayName.String(),
		HomeLogo:       home.Team.logo(),
		HomeForm:       home.Form.String(),
		HomeScore:      home.Score.String(),
		HomeRecords:    extractRecordSummary(home.Records),
		HomeStatistics: ExtractStatistics(home.Statistics),
		AwayTeam:       away.Team.DisplayName.String(),
		AwayLogo:       away.Team.logo(),
		AwayForm:       away.Form.String(),
		AwayScore:      away.Score.String(),
		AwayRecords:    extractRecordSummary(away.Records),
		AwayStatistics: ExtractStatistics(away.Statistics),
		State:          match.ParseState(status.Type.State.Value),
		Status:         status.Type.Description.String(),
		Clock:          status.DisplayClock.String(),
		Period:         status.Period.String(),
		Completed:      status.Type.Completed.Bool(),
		Venue:          competition.Venue.FullName.String(),
		Details:        ExtractEventLog(competition.Details),
		KickoffAt:      kickoff,
	}
	record.SetOdds(ExtractOdds(oddsFor(event)))
	return record
}

// splitCompetitors honours homeAway when both sides declare it, else
// treats the first competitor as home.
func splitCompetitors(competitors []competitorNode) (competitorNode, competitorNode) {
	home, away := competitors[0], competitors[1]
	if strings.EqualFold(home.HomeAway.Value, "away") && strings.EqualFold(away.HomeAway.Value, "home") {
		return away, home
	}
	return home, away
}

// NormalizeStandings reads the table of the first group, plus every group
// when upstream returns more than one. targetSeason <= 0 means the payload's
// own season year, then the current year.
func (n *Normalizer) NormalizeStandings(raw []byte, targetSeason int) (standing.Table, error) {
	var payload standingsPayload
	if err := decode(raw, &payload); err != nil {
		return standing.Table{}, fmt.Errorf("decode standings payload: %w", err)
	}
	if len(payload.Children) == 0 {
		return standing.Table{}, fmt.Errorf("standings payload has no groups")
	}

	table := standing.Table{
		Rows:          standingRows(payload.Children[0].Standings.Entries),
		FullTableLink: firstHref(payload.Children[0].Standings.Links),
		Season:        n.selectSeason(payload, targetSeason),
	}
	if len(payload.Children) > 1 {
		table.Groups = make([]standing.Group, 0, len(payload.Children))
		for _, child := range payload.Children {
			table.Groups = append(table.Groups, standing.Group{
				Name:          child.Name.Or("Unknown"),
				Rows:          standingRows(child.Standings.Entries),
				FullTableLink: firstHref(child.Standings.Links),
			})
		}
	}
	return table, nil
}

func standingRows(entries []entryNode) []standing.Row {
	rows := make([]standing.Row, 0, len(entries))
	for i, entry := range entries {
		stats := make(map[string]string, len(entry.Stats))
		for _, stat := range entry.Stats {
			stats[stat.Name.Value] = stat.DisplayValue.String()
		}
		rank, ok := entry.Note.Rank.Int()
		if !ok {
			rank = i + 1
		}
		rows = append(rows, standing.Row{
			Rank:           rank,
			TeamID:         entry.Team.ID.String(),
			TeamName:       entry.Team.DisplayName.String(),
			TeamLogo:       entry.Team.logo(),
			Points:         statOr(stats, "points"),
			GamesPlayed:    statOr(stats, "gamesPlayed"),
			Wins:           statOr(stats, "wins"),
			Draws:          statOr(stats, "ties"),
			Losses:         statOr(stats, "losses"),
			GoalsFor:       statOr(stats, "pointsFor"),
			GoalsAgainst:   statOr(stats, "pointsAgainst"),
			GoalDifference: statOr(stats, "pointDifferential"),
		})
	}
	return rows
}

func statOr(stats map[string]string, name string) string {
	if value, ok := stats[name]; ok {
		return value
	}
	return notAvailable
}

func (n *Normalizer) selectSeason(payload standingsPayload, target int) standing.Season {
	if target <= 0 {
		if year, ok := payload.Season.Year.Int(); ok {
			target = year
		} else {
			target = n.now().Year()
		}
	}
	for _, season := range payload.Seasons {
		if year, ok := season.Year.Int(); ok && year == target {
			return standing.Season{
				DisplayName: season.DisplayName.String(),
				Start:       n.dates.Format(season.StartDate.Value, false),
				End:         n.dates.Format(season.EndDate.Value, false),
			}
		}
	}
	return standing.Season{DisplayName: notAvailable, Start: notAvailable, End: notAvailable}
}

// TeamProfile is the normalized team detail payload.
type TeamProfile struct {
	TeamName      string            `json:"team_name"`
	LogoDefault   string            `json:"logo_default"`
	LogoDark      string            `json:"logo_dark"`
	OverallRecord map[string]string `json:"overall_record"`
	NextEvent     *NextEvent        `json:"next_event,omitempty"`
}

type NextEvent struct {
	Name         string            `json:"next_event_name"`
	Date         string            `json:"next_event_date"`
	Venue        string            `json:"venue"`
	HomeTeam     string            `json:"home_team"`
	HomeTeamLogo string            `json:"home_team_logo"`
	AwayTeam     string            `json:"away_team"`
	AwayTeamLogo string            `json:"away_team_logo"`
	HomeOdds     map[string]string `json:"home_odds"`
	AwayOdds     map[string]string `json:"away_odds"`
}

func (n *Normalizer) NormalizeTeamProfile(raw []byte) (TeamProfile, error) {
	var payload teamProfilePayload
	if err := decode(raw, &payload); err != nil {
		return TeamProfile{}, fmt.Errorf("decode team payload: %w", err)
	}

	team := payload.Team
	profile := TeamProfile{
		TeamName:      team.DisplayName.String(),
		LogoDefault:   firstHref(team.Logos),
		LogoDark:      notAvailable,
		OverallRecord: map[string]string{},
	}
	if len(team.Logos) > 1 {
		profile.LogoDark = team.Logos[1].Href.String()
	}
	if len(team.Record.Items) > 0 {
		for _, stat := range team.Record.Items[0].Stats {
			profile.OverallRecord[stat.Name.Or("Unknown")] = stat.Value.String()
		}
	}

	if len(team.NextEvent) == 0 {
		return profile, nil
	}
	event := team.NextEvent[0]
	next := &NextEvent{
		Name:         event.Name.String(),
		Date:         n.dates.Format(event.Date.Value, true),
		Venue:        notAvailable,
		HomeTeam:     notAvailable,
		HomeTeamLogo: notAvailable,
		AwayTeam:     notAvailable,
		AwayTeamLogo: notAvailable,
		HomeOdds:     map[string]string{},
		AwayOdds:     map[string]string{},
	}
	if len(event.Competitions) > 0 {
		competition := event.Competitions[0]
		next.Venue = competition.Venue.FullName.String()
		if len(competition.Competitors) >= 2 {
			home, away := splitCompetitors(competition.Competitors)
			next.HomeTeam = home.Team.DisplayName.String()
			next.HomeTeamLogo = firstHref(home.Team.Logos)
			next.AwayTeam = away.Team.DisplayName.String()
			next.AwayTeamLogo = firstHref(away.Team.Logos)
		}
		if len(competition.Odds) > 0 {
			next.HomeOdds = sideOdds(competition.Odds[0].HomeTeamOdds)
			next.AwayOdds = sideOdds(competition.Odds[0].AwayTeamOdds)
		}
	}
	profile.NextEvent = next
	return profile, nil
}

func sideOdds(side oddsSide) map[string]string {
	return map[string]string{
		"favorite":          side.Favorite.String(),
		"moneyLine_open":    side.Open.MoneyLine.Value.String(),
		"moneyLine_current": side.Current.MoneyLine.Value.String(),
		"spread_open":       side.Open.Spread.DisplayValue.String(),
		"spread_current":    side.Current.Spread.DisplayValue.String(),
	}
}
