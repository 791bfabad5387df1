package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"go.opentelemetry.io/otel/attribute"
)

// CatalogService serves the read-only lookups a setup wizard needs.
type CatalogService struct {
	lookup CatalogLookup
}

func NewCatalogService(lookup CatalogLookup) *CatalogService {
	return &CatalogService{lookup: lookup}
}

func (s *CatalogService) Competitions(ctx context.Context, sport string) ([]CatalogCompetition, error) {
	sp, err := parseSport(sport)
	if err != nil {
		return nil, err
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Competitions", attribute.String("sport", string(sp)))
	defer span.End()

	out, err := s.lookup.Competitions(ctx, sp)
	if err != nil {
		return nil, fmt.Errorf("%w: list competitions: %v", ErrDependencyUnavailable, err)
	}
	return out, nil
}

func (s *CatalogService) Teams(ctx context.Context, sport, code string) ([]CatalogTeam, error) {
	sp, err := parseSport(sport)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: competition code is required", ErrInvalidInput)
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Teams", attribute.String("competition", code))
	defer span.End()

	out, err := s.lookup.Teams(ctx, sp, code)
	if err != nil {
		return nil, fmt.Errorf("%w: list teams of %s: %v", ErrDependencyUnavailable, code, err)
	}
	return out, nil
}

// TeamsForCompetitions fans out over several competitions at once.
func (s *CatalogService) TeamsForCompetitions(ctx context.Context, sport string, codes []string) (map[string][]CatalogTeam, error) {
	sp, err := parseSport(sport)
	if err != nil {
		return nil, err
	}
	cleaned := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		cleaned = append(cleaned, code)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one competition code is required", ErrInvalidInput)
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.TeamsForCompetitions", attribute.Int("competitions", len(cleaned)))
	defer span.End()

	out, err := s.lookup.TeamsForCompetitions(ctx, sp, cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: list teams: %v", ErrDependencyUnavailable, err)
	}
	return out, nil
}

func (s *CatalogService) Calendar(ctx context.Context, sport, code string) (CatalogCalendar, error) {
	sp, err := parseSport(sport)
	if err != nil {
		return CatalogCalendar{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return CatalogCalendar{}, fmt.Errorf("%w: competition code is required", ErrInvalidInput)
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Calendar", attribute.String("competition", code))
	defer span.End()

	out, err := s.lookup.Calendar(ctx, sp, code)
	if err != nil {
		return CatalogCalendar{}, fmt.Errorf("%w: calendar of %s: %v", ErrDependencyUnavailable, code, err)
	}
	return out, nil
}

func parseSport(value string) (sensor.Sport, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return sensor.SportSoccer, nil
	}
	sp := sensor.Sport(value)
	if !sp.Valid() {
		return "", fmt.Errorf("%w: unknown sport %q", ErrInvalidInput, value)
	}
	return sp, nil
}
