package espn

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

const notAvailable = "N/A"

// text tolerates the scalar drift of the scoreboard feeds: a field may be a
// string, a number, a bool or an object carrying displayValue/value.
type text struct {
	Value string
	Set   bool
}

func (t *text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	t.Value, t.Set = "", false
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		t.Value, t.Set = s, true
	case '{':
		var wrapped struct {
			DisplayValue *text `json:"displayValue"`
			Value        *text `json:"value"`
		}
		if err := sonic.Unmarshal(trimmed, &wrapped); err != nil {
			return nil
		}
		switch {
		case wrapped.DisplayValue != nil && wrapped.DisplayValue.Set:
			*t = *wrapped.DisplayValue
		case wrapped.Value != nil && wrapped.Value.Set:
			*t = *wrapped.Value
		}
	case '[':
		// lists never carry a scalar we care about
	default:
		t.Value, t.Set = string(trimmed), true
	}
	return nil
}

// Or returns the value, or def when the field was absent or blank.
func (t text) Or(def string) string {
	if !t.Set || strings.TrimSpace(t.Value) == "" {
		return def
	}
	return t.Value
}

func (t text) String() string {
	return t.Or(notAvailable)
}

func (t text) Bool() bool {
	b, err := strconv.ParseBool(strings.TrimSpace(t.Value))
	return err == nil && b
}

func (t text) Int() (int, bool) {
	if !t.Set {
		return 0, false
	}
	value := strings.TrimSpace(t.Value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

type linkNode struct {
	Href text `json:"href"`
}

func firstHref(links []linkNode) string {
	if len(links) == 0 {
		return notAvailable
	}
	return links[0].Href.String()
}

type teamNode struct {
	ID           text       `json:"id"`
	DisplayName  text       `json:"displayName"`
	Abbreviation text       `json:"abbreviation"`
	Logo         text       `json:"logo"`
	Logos        []linkNode `json:"logos"`
}

// logo prefers the singular field and falls back to the first logos entry.
func (t teamNode) logo() string {
	if t.Logo.Or("") != "" {
		return t.Logo.Value
	}
	return firstHref(t.Logos)
}

type statNode struct {
	Name         text `json:"name"`
	DisplayValue text `json:"displayValue"`
	Value        text `json:"value"`
}

type recordNode struct {
	Summary text `json:"summary"`
}

type competitorNode struct {
	HomeAway   text         `json:"homeAway"`
	Team       teamNode     `json:"team"`
	Form       text         `json:"form"`
	Score      text         `json:"score"`
	Records    []recordNode `json:"records"`
	Statistics []statNode   `json:"statistics"`
}

type athleteNode struct {
	DisplayName text `json:"displayName"`
}

type detailNode struct {
	Type struct {
		Text text `json:"text"`
	} `json:"type"`
	Clock struct {
		DisplayValue text `json:"displayValue"`
	} `json:"clock"`
	AthletesInvolved []athleteNode `json:"athletesInvolved"`
}

type oddsLine struct {
	Value        text `json:"value"`
	DisplayValue text `json:"displayValue"`
}

type oddsSide struct {
	Summary  text `json:"summary"`
	Favorite text `json:"favorite"`
	Open     struct {
		MoneyLine oddsLine `json:"moneyLine"`
		Spread    oddsLine `json:"spread"`
	} `json:"open"`
	Current struct {
		MoneyLine oddsLine `json:"moneyLine"`
		Spread    oddsLine `json:"spread"`
	} `json:"current"`
}

type oddsNode struct {
	Provider struct {
		Name text `json:"name"`
	} `json:"provider"`
	HomeTeamOdds oddsSide `json:"homeTeamOdds"`
	AwayTeamOdds oddsSide `json:"awayTeamOdds"`
	DrawOdds     struct {
		Summary text `json:"summary"`
	} `json:"drawOdds"`
	Total struct {
		DisplayName text `json:"displayName"`
		Over        struct {
			Line text `json:"line"`
		} `json:"over"`
	} `json:"total"`
}

type statusNode struct {
	DisplayClock text `json:"displayClock"`
	Period       text `json:"period"`
	Type         struct {
		State       text `json:"state"`
		Description text `json:"description"`
		Completed   text `json:"completed"`
	} `json:"type"`
}

type competitionNode struct {
	Date        text             `json:"date"`
	Competitors []competitorNode `json:"competitors"`
	Venue       struct {
		FullName text `json:"fullName"`
	} `json:"venue"`
	Details []detailNode `json:"details"`
	Odds    []oddsNode   `json:"odds"`
	Status  *statusNode  `json:"status"`
}

type eventNode struct {
	ID           text              `json:"id"`
	Name         text              `json:"name"`
	Date         text              `json:"date"`
	Status       *statusNode       `json:"status"`
	Competitions []competitionNode `json:"competitions"`
	Odds         []oddsNode        `json:"odds"`
}

// status prefers the event level block; schedule feeds only carry it per competition.
func (e eventNode) status() statusNode {
	if e.Status != nil && e.Status.Type.State.Set {
		return *e.Status
	}
	if len(e.Competitions) > 0 && e.Competitions[0].Status != nil {
		return *e.Competitions[0].Status
	}
	if e.Status != nil {
		return *e.Status
	}
	return statusNode{}
}

type seasonNode struct {
	Year        text `json:"year"`
	DisplayName text `json:"displayName"`
	StartDate   text `json:"startDate"`
	EndDate     text `json:"endDate"`
}

type leagueNode struct {
	ID                text       `json:"id"`
	Abbreviation      text       `json:"abbreviation"`
	Season            seasonNode `json:"season"`
	Logos             []linkNode `json:"logos"`
	CalendarStartDate text       `json:"calendarStartDate"`
	CalendarEndDate   text       `json:"calendarEndDate"`
}

type scoreboardPayload struct {
	Leagues []leagueNode `json:"leagues"`
	Events  []eventNode  `json:"events"`
	Team    *teamNode    `json:"team"`
	// Some scoreboard variants lift the calendar bounds to the top level.
	CalendarStartDate text `json:"calendarStartDate"`
	CalendarEndDate   text `json:"calendarEndDate"`
}

type entryNode struct {
	Team  teamNode   `json:"team"`
	Stats []statNode `json:"stats"`
	Note  struct {
		Rank text `json:"rank"`
	} `json:"note"`
}

type standingsChild struct {
	Name      text `json:"name"`
	Standings struct {
		Entries []entryNode `json:"entries"`
		Links   []linkNode  `json:"links"`
	} `json:"standings"`
}

type standingsPayload struct {
	Children []standingsChild `json:"children"`
	Seasons  []seasonNode     `json:"seasons"`
	Season   seasonNode       `json:"season"`
}

type teamProfileNode struct {
	ID          text       `json:"id"`
	DisplayName text       `json:"displayName"`
	Logos       []linkNode `json:"logos"`
	Record      struct {
		Items []struct {
			Stats []statNode `json:"stats"`
		} `json:"items"`
	} `json:"record"`
	NextEvent []eventNode `json:"nextEvent"`
}

type teamProfilePayload struct {
	Team teamProfileNode `json:"team"`
}

type dropdownPayload struct {
	Leagues []struct {
		Slug text `json:"slug"`
		Name text `json:"name"`
	} `json:"leagues"`
}

type teamsPayload struct {
	Sports []struct {
		Leagues []struct {
			Teams []struct {
				Team teamNode `json:"team"`
			} `json:"teams"`
		} `json:"leagues"`
	} `json:"sports"`
}

func decode(raw []byte, out any) error {
	return sonic.Unmarshal(raw, out)
}
