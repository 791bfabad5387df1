package footballdata

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
)

const (
	StateStandings  = "Standings"
	StateTopScorers = "Top scorers"
)

// Normalize renders a paid-API payload. A panic inside a normalizer is
// converted into an error and an empty result so one bad payload never stops
// the scheduler.
func (c *Client) Normalize(_ context.Context, cfg sensor.Config, raw []byte, _ time.Time) (result sensor.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = sensor.Result{Attributes: map[string]any{}}
			err = crerr.Newf("normalize %s payload: %v", cfg.Kind, r)
		}
	}()

	n := c.normalizer
	switch cfg.Kind {
	case sensor.KindCompetitions:
		list, err := n.NormalizeCompetitions(raw)
		return sensor.Result{
			State:      fmt.Sprintf("%d competitions", len(list)),
			Attributes: map[string]any{"competitions": list},
		}, err
	case sensor.KindCompetition:
		comp, err := n.NormalizeCompetition(raw)
		return sensor.Result{
			State: comp.Name,
			Attributes: map[string]any{
				"competition":      comp,
				"current_matchday": comp.CurrentMatchday,
				"season_start":     comp.SeasonStart,
				"season_end":       comp.SeasonEnd,
			},
		}, err
	case sensor.KindStandings:
		table, err := n.NormalizeStandings(raw)
		attrs := map[string]any{
			"standings":    table.Rows,
			"season":       table.Season.DisplayName,
			"season_start": table.Season.Start,
			"season_end":   table.Season.End,
		}
		if len(table.Groups) > 0 {
			attrs["standings_groups"] = table.Groups
		}
		return sensor.Result{State: StateStandings, Attributes: attrs}, err
	case sensor.KindScorers:
		scorers, err := n.NormalizeScorers(raw)
		return sensor.Result{
			State:      StateTopScorers,
			Attributes: map[string]any{"scorers": scorers},
		}, err
	case sensor.KindMatchDay:
		day, err := n.NormalizeMatchDay(raw)
		return sensor.Result{
			State: fmt.Sprintf("Matchday %d", day.Matchday),
			Attributes: map[string]any{
				"matchday":    day.Matchday,
				"competition": day.Competition,
				"matches":     day.Matches,
			},
		}, err
	case sensor.KindTeamMatches:
		rec, err := n.NormalizeTeamMatches(raw)
		return sensor.Result{
			State: fmt.Sprintf("Played %d, Won %d, Drawn %d, Lost %d", rec.Played, rec.Won, rec.Drawn, rec.Lost),
			Attributes: map[string]any{
				"played":  rec.Played,
				"won":     rec.Won,
				"drawn":   rec.Drawn,
				"lost":    rec.Lost,
				"matches": rec.Matches,
			},
		}, err
	case sensor.KindMatchesToday:
		matches, err := n.NormalizeMatchesToday(raw)
		return sensor.Result{
			State:      fmt.Sprintf("%d matches today", len(matches)),
			Attributes: map[string]any{"matches": matches},
		}, err
	default:
		return sensor.Result{Attributes: map[string]any{}}, crerr.Newf("data kind %q is not served by %s", cfg.Kind, sensor.SourceFootballData)
	}
}
