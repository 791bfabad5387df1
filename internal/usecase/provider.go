package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
)

// Provider adapts one upstream API to the refresh controller.
type Provider interface {
	Source() sensor.Source
	// BuildURL returns fetch.ErrNoURL when this cycle should be skipped.
	BuildURL(ctx context.Context, cfg sensor.Config) (string, error)
	Headers() map[string]string
	// Acquire admits one fetch invocation. release reports its outcome.
	Acquire(ctx context.Context) (release func(err error), err error)
	// Pace admits each HTTP attempt of an invocation against the upstream quota.
	Pace(ctx context.Context) (release func(), err error)
	// Normalize always returns a usable result; a non-nil error only
	// explains why the result is defaulted.
	Normalize(ctx context.Context, cfg sensor.Config, raw []byte, now time.Time) (sensor.Result, error)
}

type CatalogCompetition struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CatalogTeam struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	CompetitionCode string `json:"competitionCode"`
}

type CatalogCalendar struct {
	CompetitionCode string `json:"competitionCode"`
	Start           string `json:"startDate"`
	End             string `json:"endDate"`
}

// CatalogLookup is the read side a setup wizard browses before creating sensors.
type CatalogLookup interface {
	Competitions(ctx context.Context, sport sensor.Sport) ([]CatalogCompetition, error)
	Teams(ctx context.Context, sport sensor.Sport, code string) ([]CatalogTeam, error)
	TeamsForCompetitions(ctx context.Context, sport sensor.Sport, codes []string) (map[string][]CatalogTeam, error)
	Calendar(ctx context.Context, sport sensor.Sport, code string) (CatalogCalendar, error)
}
