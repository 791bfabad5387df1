package sensor

import (
	"fmt"
	"strings"
	"time"
)

// DataKind selects what an entity polls and how its payload is normalized.
type DataKind string

const (
	KindStandings        DataKind = "standings"
	KindMatchDay         DataKind = "match_day"
	KindTeamMatches      DataKind = "team_matches"
	KindTeamNextMatch    DataKind = "team_next_match"
	KindTeamMatchesMixed DataKind = "team_matches_mixed"
	KindAllTodayMatches  DataKind = "all_today_matches"
	KindTeamProfile      DataKind = "team_profile"

	// Paid-API only.
	KindCompetitions DataKind = "competitions"
	KindCompetition  DataKind = "competition"
	KindScorers      DataKind = "scorers"
	KindMatchesToday DataKind = "matches_today"
)

type Source string

const (
	SourceESPN         Source = "espn"
	SourceFootballData Source = "football-data"
)

type Sport string

const (
	SportSoccer     Sport = "soccer"
	SportBasketball Sport = "basketball"
)

const (
	DefaultPollInterval = 3 * time.Minute
	DefaultWindowDays   = 30
	DateLayout          = "2006-01-02"
)

var kindsBySource = map[Source][]DataKind{
	SourceESPN: {
		KindStandings,
		KindMatchDay,
		KindTeamMatches,
		KindTeamNextMatch,
		KindTeamMatchesMixed,
		KindAllTodayMatches,
		KindTeamProfile,
	},
	SourceFootballData: {
		KindCompetitions,
		KindCompetition,
		KindStandings,
		KindScorers,
		KindMatchDay,
		KindTeamMatches,
		KindMatchesToday,
	},
}

// Supports reports whether source can serve kind.
func (s Source) Supports(kind DataKind) bool {
	for _, k := range kindsBySource[s] {
		if k == kind {
			return true
		}
	}
	return false
}

func (s Source) Valid() bool {
	_, ok := kindsBySource[s]
	return ok
}

func (s Sport) Valid() bool {
	return s == SportSoccer || s == SportBasketball
}

// NeedsCompetition reports whether the kind is scoped to a competition code.
func (k DataKind) NeedsCompetition() bool {
	switch k {
	case KindTeamMatchesMixed, KindAllTodayMatches, KindCompetitions, KindMatchesToday:
		return false
	default:
		return true
	}
}

// Config is the immutable description of one polled entity. Only the
// monitoring window and poll interval may be revised after creation.
type Config struct {
	ID              string
	SetupID         string
	Name            string
	Source          Source
	Sport           Sport
	Kind            DataKind
	CompetitionCode string
	TeamID          string
	TeamName        string
	StartDate       time.Time
	EndDate         time.Time
	PollInterval    time.Duration
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("sensor name is required")
	}
	if !c.Source.Valid() {
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if !c.Sport.Valid() {
		return fmt.Errorf("unknown sport %q", c.Sport)
	}
	if !c.Source.Supports(c.Kind) {
		return fmt.Errorf("source %s does not support data kind %q", c.Source, c.Kind)
	}
	if c.Kind.NeedsCompetition() && strings.TrimSpace(c.CompetitionCode) == "" {
		if c.Source != SourceFootballData || c.Kind != KindTeamMatches {
			return fmt.Errorf("competition code is required for %s", c.Kind)
		}
	}
	switch c.Kind {
	case KindTeamMatches, KindTeamNextMatch:
		if c.Source == SourceESPN && strings.TrimSpace(c.TeamName) == "" {
			return fmt.Errorf("team name is required for %s", c.Kind)
		}
		if c.Source == SourceFootballData && strings.TrimSpace(c.TeamID) == "" {
			return fmt.Errorf("team id is required for %s", c.Kind)
		}
	case KindTeamMatchesMixed, KindTeamProfile:
		if strings.TrimSpace(c.TeamID) == "" {
			return fmt.Errorf("team id is required for %s", c.Kind)
		}
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("start and end date are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("end date must not be before start date")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	return nil
}

// TeamIdentifier is the team part of the response cache key.
func (c Config) TeamIdentifier() string {
	if name := strings.TrimSpace(c.TeamName); name != "" {
		return name
	}
	return strings.TrimSpace(c.TeamID)
}

// WindowEnd is the last instant covered by the inclusive end date.
func (c Config) WindowEnd() time.Time {
	return c.EndDate.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Window is an inclusive calendar-date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow spans today to today + 30 days.
func DefaultWindow(now time.Time) Window {
	today := TruncateDay(now)
	return Window{Start: today, End: today.AddDate(0, 0, DefaultWindowDays)}
}

// ParseWindow reads YYYY-MM-DD bounds, defaulting missing ones.
func ParseWindow(start, end string, now time.Time) (Window, error) {
	window := DefaultWindow(now)
	if value := strings.TrimSpace(start); value != "" {
		parsed, err := time.Parse(DateLayout, value)
		if err != nil {
			return Window{}, fmt.Errorf("parse start date: %w", err)
		}
		window.Start = parsed
		window.End = parsed.AddDate(0, 0, DefaultWindowDays)
	}
	if value := strings.TrimSpace(end); value != "" {
		parsed, err := time.Parse(DateLayout, value)
		if err != nil {
			return Window{}, fmt.Errorf("parse end date: %w", err)
		}
		window.End = parsed
	}
	if window.End.Before(window.Start) {
		return Window{}, fmt.Errorf("end date must not be before start date")
	}
	return window, nil
}

func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Result is what the host reads back after a refresh.
type Result struct {
	State      string
	Attributes map[string]any
}

func (r Result) IsZero() bool {
	return r.State == "" && len(r.Attributes) == 0
}
