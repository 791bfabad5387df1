package footballdata

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
)

type areaNode struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type seasonNode struct {
	ID              int    `json:"id"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday *int   `json:"currentMatchday"`
}

type competitionNode struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Type          string      `json:"type"`
	Emblem        string      `json:"emblem"`
	Area          areaNode    `json:"area"`
	CurrentSeason *seasonNode `json:"currentSeason"`
}

type competitionsPayload struct {
	Count        int               `json:"count"`
	Competitions []competitionNode `json:"competitions"`
}

type teamNode struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type tableRowNode struct {
	Position       int      `json:"position"`
	Team           teamNode `json:"team"`
	PlayedGames    int      `json:"playedGames"`
	Form           *string  `json:"form"`
	Won            int      `json:"won"`
	Draw           int      `json:"draw"`
	Lost           int      `json:"lost"`
	Points         int      `json:"points"`
	GoalsFor       int      `json:"goalsFor"`
	GoalsAgainst   int      `json:"goalsAgainst"`
	GoalDifference int      `json:"goalDifference"`
}

type standingNode struct {
	Stage string         `json:"stage"`
	Type  string         `json:"type"`
	Group *string        `json:"group"`
	Table []tableRowNode `json:"table"`
}

type standingsPayload struct {
	Competition competitionNode `json:"competition"`
	Season      seasonNode      `json:"season"`
	Standings   []standingNode  `json:"standings"`
}

type playerNode struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
	Position    string `json:"position"`
}

type scorerNode struct {
	Player        playerNode `json:"player"`
	Team          teamNode   `json:"team"`
	PlayedMatches *int       `json:"playedMatches"`
	Goals         *int       `json:"goals"`
	Assists       *int       `json:"assists"`
	Penalties     *int       `json:"penalties"`
}

type scorersPayload struct {
	Count       int             `json:"count"`
	Competition competitionNode `json:"competition"`
	Season      seasonNode      `json:"season"`
	Scorers     []scorerNode    `json:"scorers"`
}

type scoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type scoreNode struct {
	Winner   *string   `json:"winner"`
	Duration string    `json:"duration"`
	FullTime scoreLine `json:"fullTime"`
	HalfTime scoreLine `json:"halfTime"`
}

type matchNode struct {
	ID          int             `json:"id"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	Matchday    *int            `json:"matchday"`
	Stage       string          `json:"stage"`
	Group       *string         `json:"group"`
	Venue       *string         `json:"venue"`
	HomeTeam    teamNode        `json:"homeTeam"`
	AwayTeam    teamNode        `json:"awayTeam"`
	Score       scoreNode       `json:"score"`
	Competition competitionNode `json:"competition"`
}

type resultSetNode struct {
	Count  int `json:"count"`
	Played int `json:"played"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

type matchesPayload struct {
	Filters     map[string]any  `json:"filters"`
	ResultSet   resultSetNode   `json:"resultSet"`
	Competition competitionNode `json:"competition"`
	Matches     []matchNode     `json:"matches"`
}

func decode(raw []byte, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty payload")
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func deref[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
