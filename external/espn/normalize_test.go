package espn

import (
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `{
  "leagues": [{
    "abbreviation": "Serie A",
    "season": {"startDate": "2025-08-23T04:00Z", "endDate": "2026-05-25T03:59Z"},
    "logos": [{"href": "https://a.espncdn.com/seriea.png"}]
  }],
  "events": [
    {"id": "1", "name": "Lazio at Internazionale", "date": "2026-02-27T19:45Z",
     "status": {"displayClock": "90'+4'", "period": 2, "type": {"state": "post", "description": "Full Time", "completed": true}},
     "competitions": [{"venue": {"fullName": "San Siro"}, "competitors": [
        {"homeAway": "home", "form": "WWDWL", "score": "2", "team": {"displayName": "Internazionale", "logo": "https://a.espncdn.com/inter.png"},
         "records": [{"summary": "18-4-3"}], "statistics": [{"name": "possessionPct", "displayValue": "61.2"}, {"displayValue": "7"}]},
        {"homeAway": "away", "score": "1", "team": {"displayName": "Lazio", "logos": [{"href": "https://a.espncdn.com/lazio.png"}]}}
     ], "details": [
        {"type": {"text": "Goal"}, "clock": {"displayValue": "12'"}, "athletesInvolved": [{"displayName": "Lautaro Martinez"}]},
        {"type": {"text": "Yellow Card"}, "clock": {"displayValue": "40'"}}
     ]}],
     "odds": [{"provider": {"name": "Other Book"}, "homeTeamOdds": {"summary": "9/10"}},
              {"provider": {"name": "Bet 365"}, "homeTeamOdds": {"summary": "4/5"}, "awayTeamOdds": {"summary": "7/2"},
               "drawOdds": {"summary": "11/4"}, "total": {"displayName": "Total", "over": {"line": "o2.5"}}}]},
    {"id": "2", "name": "Roma at Milan", "date": "2026-03-01T17:00Z",
     "status": {"displayClock": "0'", "period": 0, "type": {"state": "pre", "description": "Scheduled"}},
     "competitions": [{"competitors": [
        {"score": {"displayValue": "0"}, "team": {"displayName": "AC Milan"}},
        {"score": {"displayValue": "0"}, "team": {"displayName": "AS Roma"}}
     ]}]},
    {"id": "3", "name": "Broken event", "date": "2026-03-01T18:00Z", "competitions": [{"competitors": [{"team": {"displayName": "Solo"}}]}]},
    {"id": "4", "name": "Napoli at Torino", "date": "2026-04-15T18:00Z",
     "status": {"type": {"state": "pre"}},
     "competitions": [{"competitors": [{"team": {"displayName": "Torino"}}, {"team": {"displayName": "Napoli"}}]}]},
    {"id": "5", "name": "Genoa at Como", "date": "2026-01-10T14:00Z",
     "status": {"type": {"state": "post"}},
     "competitions": [{"competitors": [{"team": {"displayName": "Como"}}, {"team": {"displayName": "Genoa"}}]}]}
  ]
}`

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	dates, err := datefmt.LoadNormalizer("Europe/Rome")
	require.NoError(t, err)
	n := NewNormalizer(dates, logging.NewNop())
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return n
}

func TestNormalizeMatches_DateWindowKeepsOrder(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer(t)
	set, err := n.NormalizeMatches([]byte(scoreboardFixture), MatchFilter{
		Start: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, set.Matches, 2)
	assert.Equal(t, "Internazionale", set.Matches[0].HomeTeam)
	assert.Equal(t, "AC Milan", set.Matches[1].HomeTeam)

	first := set.Matches[0]
	assert.Equal(t, "27/02/2026 20:45", first.Date)
	assert.Equal(t, "https://a.espncdn.com/lazio.png", first.AwayLogo, "logos fallback")
	assert.Equal(t, "N/A", first.AwayForm)
	assert.Equal(t, "18-4-3", first.HomeRecords)
	assert.Equal(t, "N/A", first.AwayRecords)
	assert.Equal(t, match.StatePost, first.State)
	assert.True(t, first.Completed)
	assert.Equal(t, "2", first.Period)
	assert.Equal(t, "San Siro", first.Venue)
	assert.Equal(t, map[string]string{"possessionPct": "61.2", "Unknown": "7"}, first.HomeStatistics)
	assert.Equal(t, []string{"Goal - 12': Lautaro Martinez", "Yellow Card - 40': N/A"}, first.Details)
	assert.Equal(t, "4/5", first.HomeOdds)
	assert.Equal(t, "7/2", first.AwayOdds)
	assert.Equal(t, "11/4", first.DrawOdds)
	assert.Equal(t, "Total: o2.5", first.OverUnder)

	second := set.Matches[1]
	assert.Equal(t, "0", second.HomeScore, "score object displayValue")
	assert.Equal(t, "N/A", second.HomeOdds)
	assert.Equal(t, "N/A", second.Venue)

	require.Len(t, set.LeagueInfo, 1)
	assert.Equal(t, match.LeagueInfo{
		Abbreviation: "Serie A",
		StartDate:    "23/08/2025",
		EndDate:      "25/05/2026",
		LogoHref:     "https://a.espncdn.com/seriea.png",
	}, set.LeagueInfo[0])
}

func TestNormalizeMatches_NoWindowSkipsOnlyIncompleteEvents(t *testing.T) {
	t.Parallel()

	set, err := newTestNormalizer(t).NormalizeMatches([]byte(scoreboardFixture), MatchFilter{})
	require.NoError(t, err)
	assert.Len(t, set.Matches, 4)
}

func TestNormalizeMatches_MissingStatusDefaultsToNA(t *testing.T) {
	t.Parallel()

	raw := `{"events": [{"id": "9", "name": "Parma at Lecce", "date": "2026-03-02T18:00Z",
	  "competitions": [{"competitors": [{"team": {"displayName": "Lecce"}}, {"team": {"displayName": "Parma"}}]}]}]}`
	set, err := newTestNormalizer(t).NormalizeMatches([]byte(raw), MatchFilter{})
	require.NoError(t, err)
	require.Len(t, set.Matches, 1)

	got := set.Matches[0]
	assert.Equal(t, match.StateUnknown, got.State)
	assert.Equal(t, "N/A", string(got.State))
	assert.Equal(t, "N/A", got.Status)
	assert.Equal(t, "N/A", got.Clock)
	assert.False(t, got.Completed)
}

func TestNormalizeMatches_TeamFilter(t *testing.T) {
	t.Parallel()

	set, err := newTestNormalizer(t).NormalizeMatches([]byte(scoreboardFixture), MatchFilter{Team: "inter"})
	require.NoError(t, err)
	require.Len(t, set.Matches, 1)
	assert.Equal(t, "inter", set.TeamName)
	assert.Equal(t, "https://a.espncdn.com/inter.png", set.TeamLogo)
}

func TestNormalizeMatches_NextOnlyPrefersRecentResult(t *testing.T) {
	t.Parallel()

	set, err := newTestNormalizer(t).NormalizeMatches([]byte(scoreboardFixture), MatchFilter{
		NextOnly: true,
		Now:      time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, set.Matches, 1)
	assert.Equal(t, "Internazionale", set.Matches[0].HomeTeam)

	set, err = newTestNormalizer(t).NormalizeMatches([]byte(scoreboardFixture), MatchFilter{
		NextOnly: true,
		Now:      time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, set.Matches, 1)
	assert.Equal(t, "AC Milan", set.Matches[0].HomeTeam)
}

func TestNormalizeMatches_MalformedPayload(t *testing.T) {
	t.Parallel()

	_, err := newTestNormalizer(t).NormalizeMatches([]byte(`{"events": "nope"`), MatchFilter{})
	require.Error(t, err)
}

const standingsFixture = `{
  "season": {"year": 2025},
  "seasons": [
    {"year": 2024, "displayName": "2024-25 Serie A", "startDate": "2024-08-17T04:00Z", "endDate": "2025-05-26T03:59Z"},
    {"year": 2025, "displayName": "2025-26 Serie A", "startDate": "2025-08-23T04:00Z", "endDate": "2026-05-25T03:59Z"}
  ],
  "children": [{
    "name": "Serie A",
    "standings": {
      "links": [{"href": "https://www.espn.com/soccer/standings/_/league/ita.1"}],
      "entries": [
        {"team": {"id": "110", "displayName": "Internazionale", "logos": [{"href": "inter.png"}]}, "note": {"rank": 1},
         "stats": [{"name": "points", "displayValue": "61"}, {"name": "gamesPlayed", "displayValue": "25"}, {"name": "ties", "displayValue": "4"},
                   {"name": "pointsFor", "displayValue": "58"}, {"name": "pointDifferential", "displayValue": "+36"}]},
        {"team": {"id": "103", "displayName": "AC Milan"}, "note": {"rank": 3}, "stats": []},
        {"team": {"id": "104", "displayName": "Napoli"}, "note": {"rank": 2}, "stats": []}
      ]
    }
  }]
}`

func TestNormalizeStandings_ExplicitRanks(t *testing.T) {
	t.Parallel()

	table, err := newTestNormalizer(t).NormalizeStandings([]byte(standingsFixture), 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []int{1, 3, 2}, []int{table.Rows[0].Rank, table.Rows[1].Rank, table.Rows[2].Rank})
	assert.Equal(t, "61", table.Rows[0].Points)
	assert.Equal(t, "4", table.Rows[0].Draws)
	assert.Equal(t, "58", table.Rows[0].GoalsFor)
	assert.Equal(t, "N/A", table.Rows[0].Losses)
	assert.Equal(t, "inter.png", table.Rows[0].TeamLogo)
	assert.Equal(t, "2025-26 Serie A", table.Season.DisplayName)
	assert.Equal(t, "23/08/2025", table.Season.Start)
	assert.Equal(t, "https://www.espn.com/soccer/standings/_/league/ita.1", table.FullTableLink)
	assert.Empty(t, table.Groups)
}

func TestNormalizeStandings_PositionalRanksAndGroups(t *testing.T) {
	t.Parallel()

	raw := `{"seasons": [], "children": [
	  {"name": "Eastern Conference", "standings": {"entries": [{"team": {"displayName": "Celtics"}}, {"team": {"displayName": "Knicks"}}]}},
	  {"name": "Western Conference", "standings": {"entries": [{"team": {"displayName": "Thunder"}}]}}
	]}`
	table, err := newTestNormalizer(t).NormalizeStandings([]byte(raw), 2024)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rows[0].Rank)
	assert.Equal(t, 2, table.Rows[1].Rank)
	assert.Equal(t, "N/A", table.Season.DisplayName)
	assert.Equal(t, "N/A", table.FullTableLink)
	require.Len(t, table.Groups, 2)
	assert.Equal(t, "Western Conference", table.Groups[1].Name)
	assert.Equal(t, "Thunder", table.Groups[1].Rows[0].TeamName)
}

func TestNormalizeStandings_TargetSeasonOverride(t *testing.T) {
	t.Parallel()

	table, err := newTestNormalizer(t).NormalizeStandings([]byte(standingsFixture), 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024-25 Serie A", table.Season.DisplayName)
}

func TestNormalizeStandings_NoGroups(t *testing.T) {
	t.Parallel()

	_, err := newTestNormalizer(t).NormalizeStandings([]byte(`{"children": []}`), 0)
	require.Error(t, err)
}

func TestNormalizeTeamProfile(t *testing.T) {
	t.Parallel()

	raw := `{"team": {
	  "displayName": "Internazionale",
	  "logos": [{"href": "default.png"}, {"href": "dark.png"}],
	  "record": {"items": [{"stats": [{"name": "wins", "value": 18}, {"name": "losses", "value": 3}]}]},
	  "nextEvent": [{"name": "Internazionale at Genoa", "date": "2026-03-08T14:00Z",
	    "competitions": [{"venue": {"fullName": "Stadio Luigi Ferraris"},
	      "competitors": [{"team": {"displayName": "Genoa", "logos": [{"href": "genoa.png"}]}}, {"team": {"displayName": "Internazionale"}}],
	      "odds": [{"homeTeamOdds": {"favorite": false, "open": {"moneyLine": {"value": 450}}, "current": {"spread": {"displayValue": "+1.5"}}}}]}]}]
	}}`
	profile, err := newTestNormalizer(t).NormalizeTeamProfile([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Internazionale", profile.TeamName)
	assert.Equal(t, "dark.png", profile.LogoDark)
	assert.Equal(t, map[string]string{"wins": "18", "losses": "3"}, profile.OverallRecord)
	require.NotNil(t, profile.NextEvent)
	assert.Equal(t, "08/03/2026 15:00", profile.NextEvent.Date)
	assert.Equal(t, "genoa.png", profile.NextEvent.HomeTeamLogo)
	assert.Equal(t, "N/A", profile.NextEvent.AwayTeamLogo)
	assert.Equal(t, "false", profile.NextEvent.HomeOdds["favorite"])
	assert.Equal(t, "450", profile.NextEvent.HomeOdds["moneyLine_open"])
	assert.Equal(t, "+1.5", profile.NextEvent.HomeOdds["spread_current"])
	assert.Equal(t, "N/A", profile.NextEvent.HomeOdds["spread_open"])
}
