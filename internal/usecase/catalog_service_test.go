package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogLookupMock struct {
	mock.Mock
}

func (m *catalogLookupMock) Competitions(ctx context.Context, sport sensor.Sport) ([]CatalogCompetition, error) {
	args := m.Called(ctx, sport)
	out, _ := args.Get(0).([]CatalogCompetition)
	return out, args.Error(1)
}

func (m *catalogLookupMock) Teams(ctx context.Context, sport sensor.Sport, code string) ([]CatalogTeam, error) {
	args := m.Called(ctx, sport, code)
	out, _ := args.Get(0).([]CatalogTeam)
	return out, args.Error(1)
}

func (m *catalogLookupMock) TeamsForCompetitions(ctx context.Context, sport sensor.Sport, codes []string) (map[string][]CatalogTeam, error) {
	args := m.Called(ctx, sport, codes)
	out, _ := args.Get(0).(map[string][]CatalogTeam)
	return out, args.Error(1)
}

func (m *catalogLookupMock) Calendar(ctx context.Context, sport sensor.Sport, code string) (CatalogCalendar, error) {
	args := m.Called(ctx, sport, code)
	out, _ := args.Get(0).(CatalogCalendar)
	return out, args.Error(1)
}

func TestCatalogService_CompetitionsDefaultsToSoccer(t *testing.T) {
	t.Parallel()

	lookup := &catalogLookupMock{}
	lookup.On("Competitions", mock.Anything, sensor.SportSoccer).
		Return([]CatalogCompetition{{Code: "eng.1", Name: "English Premier League"}}, nil).Once()

	got, err := NewCatalogService(lookup).Competitions(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	lookup.AssertExpectations(t)
}

func TestCatalogService_WrapsUpstreamFailure(t *testing.T) {
	t.Parallel()

	lookup := &catalogLookupMock{}
	lookup.On("Calendar", mock.Anything, sensor.SportBasketball, "nba").
		Return(CatalogCalendar{}, errors.New("status=503")).Once()

	_, err := NewCatalogService(lookup).Calendar(context.Background(), "Basketball", "nba")
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestCatalogService_ValidatesInput(t *testing.T) {
	t.Parallel()

	service := NewCatalogService(&catalogLookupMock{})

	_, err := service.Competitions(context.Background(), "cricket")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = service.Teams(context.Background(), "soccer", "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = service.TeamsForCompetitions(context.Background(), "soccer", []string{"", " "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_TeamsForCompetitionsDedupes(t *testing.T) {
	t.Parallel()

	lookup := &catalogLookupMock{}
	lookup.On("TeamsForCompetitions", mock.Anything, sensor.SportSoccer, []string{"eng.1", "esp.1"}).
		Return(map[string][]CatalogTeam{"eng.1": {{ID: "359"}}, "esp.1": {{ID: "86"}}}, nil).Once()

	got, err := NewCatalogService(lookup).TeamsForCompetitions(context.Background(), "soccer", []string{"eng.1", " esp.1", "eng.1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	lookup.AssertExpectations(t)
}
