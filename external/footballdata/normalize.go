package footballdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/standing"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
)

const notAvailable = match.NotAvailable

// CompetitionSummary is one entry of the competitions catalog.
type CompetitionSummary struct {
	ID              int    `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Area            string `json:"area"`
	Emblem          string `json:"emblem"`
	SeasonStart     string `json:"season_start"`
	SeasonEnd       string `json:"season_end"`
	CurrentMatchday int    `json:"current_matchday"`
}

type Scorer struct {
	Rank          int    `json:"rank"`
	PlayerName    string `json:"player_name"`
	Nationality   string `json:"nationality"`
	TeamName      string `json:"team_name"`
	TeamLogo      string `json:"team_logo"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	Penalties     int    `json:"penalties"`
	PlayedMatches int    `json:"played_matches"`
}

type MatchDay struct {
	Matchday    int
	Competition string
	Matches     []match.Record
}

// TeamRecord is the season tally of one team plus its fixtures.
type TeamRecord struct {
	Played  int
	Won     int
	Drawn   int
	Lost    int
	Matches []match.Record
}

// Normalizer maps paid-API payloads to the shared record types. Every method
// returns a defaulted value alongside any error so callers can always publish.
type Normalizer struct {
	dates *datefmt.Normalizer
}

func NewNormalizer(dates *datefmt.Normalizer) *Normalizer {
	if dates == nil {
		dates = datefmt.NewNormalizer(nil)
	}
	return &Normalizer{dates: dates}
}

func (n *Normalizer) NormalizeCompetitions(raw []byte) ([]CompetitionSummary, error) {
	var payload competitionsPayload
	if err := decode(raw, &payload); err != nil {
		return []CompetitionSummary{}, err
	}
	out := make([]CompetitionSummary, 0, len(payload.Competitions))
	for _, c := range payload.Competitions {
		out = append(out, n.summary(c))
	}
	return out, nil
}

func (n *Normalizer) NormalizeCompetition(raw []byte) (CompetitionSummary, error) {
	var payload competitionNode
	if err := decode(raw, &payload); err != nil {
		return n.summary(competitionNode{}), err
	}
	return n.summary(payload), nil
}

func (n *Normalizer) summary(c competitionNode) CompetitionSummary {
	out := CompetitionSummary{
		ID:          c.ID,
		Code:        orNA(c.Code),
		Name:        orNA(c.Name),
		Type:        orNA(c.Type),
		Area:        orNA(c.Area.Name),
		Emblem:      orNA(c.Emblem),
		SeasonStart: notAvailable,
		SeasonEnd:   notAvailable,
	}
	if season := c.CurrentSeason; season != nil {
		out.SeasonStart = n.dates.Format(season.StartDate, false)
		out.SeasonEnd = n.dates.Format(season.EndDate, false)
		out.CurrentMatchday = deref(season.CurrentMatchday, 0)
	}
	return out
}

// NormalizeStandings keeps the TOTAL tables. Cup formats yield one group per table.
func (n *Normalizer) NormalizeStandings(raw []byte) (standing.Table, error) {
	table := standing.Table{
		Rows:   []standing.Row{},
		Season: standing.Season{DisplayName: notAvailable, Start: notAvailable, End: notAvailable},
	}

	var payload standingsPayload
	if err := decode(raw, &payload); err != nil {
		return table, err
	}

	table.Season = standing.Season{
		DisplayName: seasonLabel(payload.Season.StartDate, payload.Season.EndDate),
		Start:       n.dates.Format(payload.Season.StartDate, false),
		End:         n.dates.Format(payload.Season.EndDate, false),
	}

	groups := make([]standing.Group, 0, len(payload.Standings))
	for _, s := range payload.Standings {
		if s.Type != "" && !strings.EqualFold(s.Type, "TOTAL") {
			continue
		}
		name := deref(s.Group, "")
		if name == "" {
			name = orNA(s.Stage)
		}
		groups = append(groups, standing.Group{Name: name, Rows: tableRows(s.Table)})
	}
	if len(groups) == 0 {
		return table, fmt.Errorf("standings payload has no total table")
	}

	table.Rows = groups[0].Rows
	if len(groups) > 1 {
		table.Groups = groups
	}
	return table, nil
}

func tableRows(rows []tableRowNode) []standing.Row {
	out := make([]standing.Row, 0, len(rows))
	for i, r := range rows {
		rank := r.Position
		if rank <= 0 {
			rank = i + 1
		}
		out = append(out, standing.Row{
			Rank:           rank,
			TeamID:         strconv.Itoa(r.Team.ID),
			TeamName:       orNA(r.Team.Name),
			TeamLogo:       orNA(r.Team.Crest),
			Points:         strconv.Itoa(r.Points),
			GamesPlayed:    strconv.Itoa(r.PlayedGames),
			Wins:           strconv.Itoa(r.Won),
			Draws:          strconv.Itoa(r.Draw),
			Losses:         strconv.Itoa(r.Lost),
			GoalsFor:       strconv.Itoa(r.GoalsFor),
			GoalsAgainst:   strconv.Itoa(r.GoalsAgainst),
			GoalDifference: strconv.Itoa(r.GoalDifference),
		})
	}
	return out
}

func seasonLabel(start, end string) string {
	s, okStart := datefmt.ParseDate(start)
	e, okEnd := datefmt.ParseDate(end)
	switch {
	case okStart && okEnd && s.Year() != e.Year():
		return fmt.Sprintf("%d-%d", s.Year(), e.Year())
	case okStart:
		return strconv.Itoa(s.Year())
	default:
		return notAvailable
	}
}

func (n *Normalizer) NormalizeScorers(raw []byte) ([]Scorer, error) {
	var payload scorersPayload
	if err := decode(raw, &payload); err != nil {
		return []Scorer{}, err
	}
	out := make([]Scorer, 0, len(payload.Scorers))
	for i, s := range payload.Scorers {
		out = append(out, Scorer{
			Rank:          i + 1,
			PlayerName:    orNA(s.Player.Name),
			Nationality:   orNA(s.Player.Nationality),
			TeamName:      orNA(s.Team.Name),
			TeamLogo:      orNA(s.Team.Crest),
			Goals:         deref(s.Goals, 0),
			Assists:       deref(s.Assists, 0),
			Penalties:     deref(s.Penalties, 0),
			PlayedMatches: deref(s.PlayedMatches, 0),
		})
	}
	return out, nil
}

func (n *Normalizer) NormalizeMatchDay(raw []byte) (MatchDay, error) {
	out := MatchDay{Competition: notAvailable, Matches: []match.Record{}}

	var payload matchesPayload
	if err := decode(raw, &payload); err != nil {
		return out, err
	}
	out.Competition = orNA(payload.Competition.Name)
	out.Matches = n.records(payload.Matches)
	out.Matchday = filterMatchday(payload.Filters)
	if out.Matchday == 0 {
		for _, m := range payload.Matches {
			if md := deref(m.Matchday, 0); md > 0 {
				out.Matchday = md
				break
			}
		}
	}
	return out, nil
}

func (n *Normalizer) NormalizeTeamMatches(raw []byte) (TeamRecord, error) {
	out := TeamRecord{Matches: []match.Record{}}

	var payload matchesPayload
	if err := decode(raw, &payload); err != nil {
		return out, err
	}
	out.Played = payload.ResultSet.Played
	out.Won = payload.ResultSet.Wins
	out.Drawn = payload.ResultSet.Draws
	out.Lost = payload.ResultSet.Losses
	out.Matches = n.records(payload.Matches)
	return out, nil
}

func (n *Normalizer) NormalizeMatchesToday(raw []byte) ([]match.Record, error) {
	var payload matchesPayload
	if err := decode(raw, &payload); err != nil {
		return []match.Record{}, err
	}
	return n.records(payload.Matches), nil
}

func (n *Normalizer) records(matches []matchNode) []match.Record {
	out := make([]match.Record, 0, len(matches))
	for _, m := range matches {
		out = append(out, n.record(m))
	}
	return out
}

func (n *Normalizer) record(m matchNode) match.Record {
	home, away := orNA(m.HomeTeam.Name), orNA(m.AwayTeam.Name)
	state := ParseStatus(m.Status)
	r := match.Record{
		Name:           home + " - " + away,
		Date:           n.dates.Format(m.UTCDate, true),
		HomeTeam:       home,
		HomeLogo:       orNA(m.HomeTeam.Crest),
		HomeForm:       notAvailable,
		HomeScore:      score(m.Score.FullTime.Home),
		HomeRecords:    notAvailable,
		HomeStatistics: map[string]string{},
		AwayTeam:       away,
		AwayLogo:       orNA(m.AwayTeam.Crest),
		AwayForm:       notAvailable,
		AwayScore:      score(m.Score.FullTime.Away),
		AwayRecords:    notAvailable,
		AwayStatistics: map[string]string{},
		State:          state,
		Status:         orNA(m.Status),
		Clock:          notAvailable,
		Period:         notAvailable,
		Completed:      strings.EqualFold(m.Status, "FINISHED") || strings.EqualFold(m.Status, "AWARDED"),
		Venue:          orNA(deref(m.Venue, "")),
		Details:        []string{},
	}
	r.SetOdds(match.EmptyOdds())
	if kickoff, ok := datefmt.ParseTimestamp(m.UTCDate); ok {
		r.KickoffAt = kickoff
	}
	return r
}

// ParseStatus maps the paid API's status vocabulary onto the match lifecycle.
func ParseStatus(status string) match.State {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SCHEDULED", "TIMED", "POSTPONED":
		return match.StatePre
	case "IN_PLAY", "PAUSED", "LIVE", "SUSPENDED":
		return match.StateIn
	case "FINISHED", "AWARDED", "CANCELLED":
		return match.StatePost
	default:
		return match.StateUnknown
	}
}

func filterMatchday(filters map[string]any) int {
	switch v := filters["matchday"].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func score(value *int) string {
	if value == nil {
		return notAvailable
	}
	return strconv.Itoa(*value)
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}
