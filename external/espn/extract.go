package espn

import (
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/datefmt"
	"github.com/valyala/bytebufferpool"
)

// OddsProvider is the bookmaker whose lines are surfaced.
const OddsProvider = "Bet 365"

// ExtractStatistics maps statistic name to its display value.
func ExtractStatistics(stats []statNode) map[string]string {
	out := make(map[string]string, len(stats))
	for _, stat := range stats {
		out[stat.Name.Or("Unknown")] = stat.DisplayValue.String()
	}
	return out
}

// ExtractEventLog renders "{type} - {clock}: {athletes}" per detail entry.
func ExtractEventLog(details []detailNode) []string {
	events := make([]string, 0, len(details))
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, detail := range details {
		buf.Reset()
		_, _ = buf.WriteString(detail.Type.Text.Or("Unknown"))
		_, _ = buf.WriteString(" - ")
		_, _ = buf.WriteString(detail.Clock.DisplayValue.String())
		_, _ = buf.WriteString(": ")
		if len(detail.AthletesInvolved) == 0 {
			_, _ = buf.WriteString(notAvailable)
		}
		for i, athlete := range detail.AthletesInvolved {
			if i > 0 {
				_, _ = buf.WriteString(", ")
			}
			_, _ = buf.WriteString(athlete.DisplayName.Or("Unknown"))
		}
		events = append(events, buf.String())
	}
	return events
}

// ExtractOdds reads the first OddsProvider entry; every field is "N/A" without one.
func ExtractOdds(odds []oddsNode) match.Odds {
	for _, odd := range odds {
		if odd.Provider.Name.Value != OddsProvider {
			continue
		}
		return match.Odds{
			Home:      odd.HomeTeamOdds.Summary.String(),
			Away:      odd.AwayTeamOdds.Summary.String(),
			Draw:      odd.DrawOdds.Summary.String(),
			OverUnder: odd.Total.DisplayName.Or("Total") + ": " + odd.Total.Over.Line.String(),
		}
	}
	return match.EmptyOdds()
}

// ExtractLeagueInfo returns one entry per league block, season dates without time.
func ExtractLeagueInfo(leagues []leagueNode, dates *datefmt.Normalizer) []match.LeagueInfo {
	out := make([]match.LeagueInfo, 0, len(leagues))
	for _, league := range leagues {
		out = append(out, match.LeagueInfo{
			Abbreviation: league.Abbreviation.String(),
			StartDate:    dates.Format(league.Season.StartDate.Value, false),
			EndDate:      dates.Format(league.Season.EndDate.Value, false),
			LogoHref:     firstHref(league.Logos),
		})
	}
	return out
}

func extractRecordSummary(records []recordNode) string {
	if len(records) == 0 {
		return notAvailable
	}
	return records[0].Summary.String()
}

// oddsFor prefers event level odds and falls back to the competition block.
func oddsFor(event eventNode) []oddsNode {
	if len(event.Odds) > 0 {
		return event.Odds
	}
	if len(event.Competitions) > 0 {
		return event.Competitions[0].Odds
	}
	return nil
}
