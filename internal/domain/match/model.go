package match

import (
	"strings"
	"time"
)

// State is the lifecycle phase of a fixture.
type State string

const (
	StatePre  State = "pre"
	StateIn   State = "in"
	StatePost State = "post"

	NotAvailable = "N/A"

	// StateUnknown marks a fixture whose lifecycle upstream did not report.
	StateUnknown State = NotAvailable
)

func ParseState(value string) State {
	switch State(strings.ToLower(strings.TrimSpace(value))) {
	case StateIn:
		return StateIn
	case StatePost:
		return StatePost
	case StatePre:
		return StatePre
	default:
		return StateUnknown
	}
}

// Record is one normalized match. Text fields hold "N/A" rather than being
// empty so consumers can rely on every key being present.
type Record struct {
	Name           string            `json:"name"`
	Date           string            `json:"date"`
	HomeTeam       string            `json:"home_team"`
	HomeLogo       string            `json:"home_logo"`
	HomeForm       string            `json:"home_form"`
	HomeScore      string            `json:"home_score"`
	HomeRecords    string            `json:"home_records"`
	HomeStatistics map[string]string `json:"home_statistics"`
	AwayTeam       string            `json:"away_team"`
	AwayLogo       string            `json:"away_logo"`
	AwayForm       string            `json:"away_form"`
	AwayScore      string            `json:"away_score"`
	AwayRecords    string            `json:"away_records"`
	AwayStatistics map[string]string `json:"away_statistics"`
	State          State             `json:"state"`
	Status         string            `json:"status"`
	Clock          string            `json:"clock"`
	Period         string            `json:"period"`
	Completed      bool              `json:"completed"`
	Venue          string            `json:"venue"`
	Details        []string          `json:"match_details"`
	HomeOdds       string            `json:"home_odds"`
	AwayOdds       string            `json:"away_odds"`
	DrawOdds       string            `json:"draw_odds"`
	OverUnder      string            `json:"over_under"`

	KickoffAt time.Time `json:"-"`
}

// Odds is the summary line of one bookmaker.
type Odds struct {
	Home      string
	Away      string
	Draw      string
	OverUnder string
}

func EmptyOdds() Odds {
	return Odds{Home: NotAvailable, Away: NotAvailable, Draw: NotAvailable, OverUnder: NotAvailable}
}

func (r *Record) SetOdds(o Odds) {
	r.HomeOdds = o.Home
	r.AwayOdds = o.Away
	r.DrawOdds = o.Draw
	r.OverUnder = o.OverUnder
}

// LeagueInfo describes one league block carried by a scoreboard payload.
type LeagueInfo struct {
	Abbreviation string `json:"abbreviation"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	LogoHref     string `json:"logo_href"`
}
