package standing

// Row is one team line of a league table.
type Row struct {
	Rank           int    `json:"rank"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	TeamLogo       string `json:"team_logo"`
	Points         string `json:"points"`
	GamesPlayed    string `json:"games_played"`
	Wins           string `json:"wins"`
	Draws          string `json:"draws"`
	Losses         string `json:"losses"`
	GoalsFor       string `json:"goals_for"`
	GoalsAgainst   string `json:"goals_against"`
	GoalDifference string `json:"goal_difference"`
}

// Group is a named sub-table, e.g. a cup group or a basketball conference.
type Group struct {
	Name          string `json:"name"`
	Rows          []Row  `json:"standings"`
	FullTableLink string `json:"full_table_link"`
}

type Season struct {
	DisplayName string `json:"season"`
	Start       string `json:"season_start"`
	End         string `json:"season_end"`
}

// Table is a normalized standings payload. Rows is the first group's table;
// Groups is only set when upstream returns more than one group.
type Table struct {
	Rows          []Row
	Groups        []Group
	Season        Season
	FullTableLink string
}
