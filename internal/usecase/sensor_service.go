package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

type SetupSelection string

const (
	SelectionCompetition SetupSelection = "competition"
	SelectionTeam        SetupSelection = "team"
	SelectionAllToday    SetupSelection = "all_today"
	SelectionPaid        SetupSelection = "paid"
)

// EntityScheduler drives periodic refreshes. Schedule replaces any loop
// already running for the same entity.
type EntityScheduler interface {
	Schedule(e *Entity)
	Unschedule(id string)
}

type SetupInput struct {
	Selection       SetupSelection
	Sport           sensor.Sport
	CompetitionCode string
	TeamID          string
	TeamName        string
	// PaidKinds lists the paid-API kinds to create for SelectionPaid.
	PaidKinds    []sensor.DataKind
	StartDate    string
	EndDate      string
	PollInterval time.Duration
}

type SetupResult struct {
	SetupID string       `json:"setup_id"`
	Created []SensorView `json:"created"`
	Skipped []string     `json:"skipped"`
}

type CreateSensorInput struct {
	Name            string
	Source          sensor.Source
	Sport           sensor.Sport
	Kind            sensor.DataKind
	CompetitionCode string
	TeamID          string
	TeamName        string
	StartDate       string
	EndDate         string
	PollInterval    time.Duration
}

type UpdateWindowInput struct {
	StartDate    string
	EndDate      string
	PollInterval time.Duration
}

// SensorView is a point-in-time snapshot of one entity.
type SensorView struct {
	ID              string         `json:"id"`
	SetupID         string         `json:"setup_id,omitempty"`
	Name            string         `json:"name"`
	Source          string         `json:"source"`
	Sport           string         `json:"sport"`
	Kind            string         `json:"kind"`
	CompetitionCode string         `json:"competition_code,omitempty"`
	TeamID          string         `json:"team_id,omitempty"`
	TeamName        string         `json:"team_name,omitempty"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	PollInterval    string         `json:"poll_interval"`
	State           *string        `json:"state"`
	Attributes      map[string]any `json:"attributes"`
	LastRefreshAt   *time.Time     `json:"last_refresh_at,omitempty"`
}

type SensorServiceConfig struct {
	DefaultPollInterval time.Duration
	Logger              *logging.Logger
	Now                 func() time.Time
	NewID               func() string
}

type SensorService struct {
	repo      sensor.Repository
	refresher Refresher
	scheduler EntityScheduler
	logger    *logging.Logger
	interval  time.Duration
	now       func() time.Time
	newID     func() string

	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewSensorService(repo sensor.Repository, refresher Refresher, scheduler EntityScheduler, cfg SensorServiceConfig) *SensorService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.DefaultPollInterval
	if interval <= 0 {
		interval = sensor.DefaultPollInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	if scheduler == nil {
		scheduler = noopScheduler{}
	}

	return &SensorService{
		repo:      repo,
		refresher: refresher,
		scheduler: scheduler,
		logger:    logger.Named("sensors"),
		interval:  interval,
		now:       now,
		newID:     newID,
		entities:  make(map[string]*Entity),
	}
}

// Setup expands one setup record into entity configs. Entities whose unique
// id already exists are reported as skipped.
func (s *SensorService) Setup(ctx context.Context, input SetupInput) (SetupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SensorService.Setup")
	defer span.End()

	window, err := sensor.ParseWindow(input.StartDate, input.EndDate, s.now())
	if err != nil {
		return SetupResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	configs, err := s.expandSetup(input, window)
	if err != nil {
		return SetupResult{}, err
	}

	result := SetupResult{
		SetupID: s.newID(),
		Created: make([]SensorView, 0, len(configs)),
		Skipped: make([]string, 0),
	}
	for _, cfg := range configs {
		cfg.SetupID = result.SetupID
		if err := cfg.Validate(); err != nil {
			return SetupResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	for _, cfg := range configs {
		cfg.SetupID = result.SetupID
		entity, err := s.register(ctx, cfg)
		if err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				result.Skipped = append(result.Skipped, cfg.ID)
				continue
			}
			return SetupResult{}, err
		}
		result.Created = append(result.Created, viewOf(entity))
	}

	s.logger.InfoContext(ctx, "setup expanded",
		"setup_id", result.SetupID,
		"selection", string(input.Selection),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (s *SensorService) expandSetup(input SetupInput, window sensor.Window) ([]sensor.Config, error) {
	sport := input.Sport
	if sport == "" {
		sport = sensor.SportSoccer
	}
	interval := input.PollInterval
	if interval <= 0 {
		interval = s.interval
	}
	code := strings.TrimSpace(input.CompetitionCode)
	teamName := strings.TrimSpace(input.TeamName)
	teamID := strings.TrimSpace(input.TeamID)

	base := sensor.Config{
		Source:          sensor.SourceESPN,
		Sport:           sport,
		CompetitionCode: code,
		TeamID:          teamID,
		TeamName:        teamName,
		StartDate:       window.Start,
		EndDate:         window.End,
		PollInterval:    interval,
	}

	var kinds []sensor.DataKind
	switch input.Selection {
	case SelectionTeam:
		if code == "" || teamName == "" {
			return nil, fmt.Errorf("%w: competition code and team name are required", ErrInvalidInput)
		}
		kinds = []sensor.DataKind{sensor.KindTeamNextMatch, sensor.KindTeamMatches}
		if teamID != "" {
			kinds = append(kinds, sensor.KindTeamMatchesMixed)
		}
	case SelectionCompetition:
		if code == "" {
			return nil, fmt.Errorf("%w: competition code is required", ErrInvalidInput)
		}
		base.TeamID, base.TeamName = "", ""
		kinds = []sensor.DataKind{sensor.KindStandings, sensor.KindMatchDay}
	case SelectionAllToday:
		base.CompetitionCode, base.TeamID, base.TeamName = "", "", ""
		kinds = []sensor.DataKind{sensor.KindAllTodayMatches}
	case SelectionPaid:
		if len(input.PaidKinds) == 0 {
			return nil, fmt.Errorf("%w: at least one paid data kind is required", ErrInvalidInput)
		}
		base.Source = sensor.SourceFootballData
		kinds = input.PaidKinds
	default:
		return nil, fmt.Errorf("%w: unknown selection %q", ErrInvalidInput, input.Selection)
	}

	out := make([]sensor.Config, 0, len(kinds))
	seen := make(map[sensor.DataKind]struct{}, len(kinds))
	for _, kind := range kinds {
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}

		cfg := base
		cfg.Kind = kind
		if cfg.Source == sensor.SourceFootballData {
			scopePaidConfig(&cfg)
		}
		cfg.Name = sensor.DefaultName(cfg)
		cfg.ID = sensor.UniqueID(cfg.Name, cfg.Kind)
		out = append(out, cfg)
	}
	return out, nil
}

// scopePaidConfig drops the identifiers a paid kind does not use so the
// response cache key stays shared between equivalent entities.
func scopePaidConfig(cfg *sensor.Config) {
	switch cfg.Kind {
	case sensor.KindTeamMatches:
		cfg.CompetitionCode = ""
		cfg.TeamName = ""
	case sensor.KindCompetitions, sensor.KindMatchesToday:
		cfg.CompetitionCode = ""
		cfg.TeamID, cfg.TeamName = "", ""
	default:
		cfg.TeamID, cfg.TeamName = "", ""
	}
}

// Create registers a single entity config.
func (s *SensorService) Create(ctx context.Context, input CreateSensorInput) (SensorView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SensorService.Create")
	defer span.End()

	window, err := sensor.ParseWindow(input.StartDate, input.EndDate, s.now())
	if err != nil {
		return SensorView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	cfg := sensor.Config{
		Name:            strings.TrimSpace(input.Name),
		Source:          input.Source,
		Sport:           input.Sport,
		Kind:            input.Kind,
		CompetitionCode: strings.TrimSpace(input.CompetitionCode),
		TeamID:          strings.TrimSpace(input.TeamID),
		TeamName:        strings.TrimSpace(input.TeamName),
		StartDate:       window.Start,
		EndDate:         window.End,
		PollInterval:    input.PollInterval,
	}
	if cfg.Source == "" {
		cfg.Source = sensor.SourceESPN
	}
	if cfg.Sport == "" {
		cfg.Sport = sensor.SportSoccer
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = s.interval
	}
	if cfg.Name == "" {
		cfg.Name = sensor.DefaultName(cfg)
	}
	cfg.ID = sensor.UniqueID(cfg.Name, cfg.Kind)

	if err := cfg.Validate(); err != nil {
		return SensorView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	entity, err := s.register(ctx, cfg)
	if err != nil {
		return SensorView{}, err
	}
	s.logger.InfoContext(ctx, "sensor created", "sensor_id", cfg.ID, "kind", string(cfg.Kind))
	return viewOf(entity), nil
}

func (s *SensorService) register(ctx context.Context, cfg sensor.Config) (*Entity, error) {
	now := s.now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	s.mu.Lock()
	if _, exists := s.entities[cfg.ID]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: sensor=%s", ErrAlreadyExists, cfg.ID)
	}
	_, exists, err := s.repo.GetByID(ctx, cfg.ID)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("get sensor config: %w", err)
	}
	if exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: sensor=%s", ErrAlreadyExists, cfg.ID)
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("save sensor config: %w", err)
	}
	entity := NewEntity(cfg)
	s.entities[cfg.ID] = entity
	s.mu.Unlock()

	s.scheduler.Schedule(entity)
	return entity, nil
}

func (s *SensorService) List(ctx context.Context) ([]SensorView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SensorService.List")
	defer span.End()

	s.mu.RLock()
	out := make([]SensorView, 0, len(s.entities))
	for _, entity := range s.entities {
		out = append(out, viewOf(entity))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *SensorService) Get(ctx context.Context, id string) (SensorView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SensorService.Get")
	defer span.End()

	entity, err := s.lookup(id)
	if err != nil {
		return SensorView{}, err
	}
	return viewOf(entity), nil
}

// UpdateWindow revises the monitoring window. Cached payloads are left alone;
// the new window applies from the next poll.
func (s *SensorService) UpdateWindow(ctx context.Context, id string, input UpdateWindowInput) (SensorView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SensorService.UpdateWindow")
	defer span.End()

	entity, err := s.lookup(id)
	if err != nil {
		return SensorView{}, err
	}
	current := entity.Config()

	start, err := parseOptionalDate(input.StartDate, current.StartDate)
	if err != nil {
		return SensorView{}, fmt.Errorf("%w: parse start date: %v", ErrInvalidInput, err)
	}
	end, err := parseOptionalDate(input.EndDate, current.EndDate)
	if err != nil {
		return SensorView{}, fmt.Errorf("%w: parse end date: %v", ErrInvalidInput, err)
	}
	if input.PollInterval < 0 {
		return SensorView{}, fmt.Errorf("%w: poll interval must be > 0", ErrInvalidInput)
	}

	updated, err := reviseWindow(current, start, end, input.PollInterval, s.now())
	if err != nil {
		return SensorView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.Upsert(ctx, updated); err != nil {
		return SensorView{}, fmt.Errorf("save sensor config: %w", err)
	}
	entity.setConfig(updated)
	if updated.PollInterval != current.PollInterval {
		s.scheduler.Schedule(entity)
	}

	s.logger.InfoContext(ctx, "sensor window updated",
		"sensor_id", id,
		"start_date", updated.StartDate.Format(sensor.DateLayout),
		"end_date", updated.EndDate.Format(sensor.DateLayout),
		"poll_interval", updated.PollInterval,
	)
	return viewOf(entity), nil
}

func (s *SensorService) Delete(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SensorService.Delete")
	defer span.End()

	id = strings.TrimSpace(id)
	s.mu.Lock()
	if _, ok := s.entities[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: sensor=%s", ErrNotFound, id)
	}
	delete(s.entities, id)
	s.mu.Unlock()

	s.scheduler.Unschedule(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sensor config: %w", err)
	}
	s.logger.InfoContext(ctx, "sensor deleted", "sensor_id", id)
	return nil
}

// RefreshNow runs one refresh synchronously, outside the schedule.
func (s *SensorService) RefreshNow(ctx context.Context, id string) (SensorView, RefreshOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SensorService.RefreshNow")
	defer span.End()

	entity, err := s.lookup(id)
	if err != nil {
		return SensorView{}, "", err
	}
	outcome := s.refresher.Refresh(ctx, entity)
	return viewOf(entity), outcome, nil
}

// Restore reloads persisted configs at boot. Invalid rows are logged and
// skipped rather than failing startup.
func (s *SensorService) Restore(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SensorService.Restore")
	defer span.End()

	configs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sensor configs: %w", err)
	}

	restored := make([]*Entity, 0, len(configs))
	s.mu.Lock()
	for _, cfg := range configs {
		if cfg.PollInterval <= 0 {
			cfg.PollInterval = s.interval
		}
		if err := cfg.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid persisted sensor", "sensor_id", cfg.ID, "error", err)
			continue
		}
		if _, exists := s.entities[cfg.ID]; exists {
			continue
		}
		entity := NewEntity(cfg)
		s.entities[cfg.ID] = entity
		restored = append(restored, entity)
	}
	s.mu.Unlock()

	for _, entity := range restored {
		s.scheduler.Schedule(entity)
	}
	s.logger.InfoContext(ctx, "sensors restored", "count", len(restored))
	return len(restored), nil
}

func (s *SensorService) lookup(id string) (*Entity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: sensor id is required", ErrInvalidInput)
	}
	s.mu.RLock()
	entity, ok := s.entities[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: sensor=%s", ErrNotFound, id)
	}
	return entity, nil
}

func parseOptionalDate(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return time.Parse(sensor.DateLayout, value)
}

func viewOf(e *Entity) SensorView {
	cfg := e.Config()
	view := SensorView{
		ID:              cfg.ID,
		SetupID:         cfg.SetupID,
		Name:            cfg.Name,
		Source:          string(cfg.Source),
		Sport:           string(cfg.Sport),
		Kind:            string(cfg.Kind),
		CompetitionCode: cfg.CompetitionCode,
		TeamID:          cfg.TeamID,
		TeamName:        cfg.TeamName,
		StartDate:       cfg.StartDate.Format(sensor.DateLayout),
		EndDate:         cfg.EndDate.Format(sensor.DateLayout),
		PollInterval:    cfg.PollInterval.String(),
		Attributes:      e.Attributes(),
	}
	if state := e.State(); state != "" {
		view.State = &state
	}
	if at := e.LastRefreshAt(); !at.IsZero() {
		view.LastRefreshAt = &at
	}
	return view
}

type noopScheduler struct{}

func (noopScheduler) Schedule(*Entity)  {}
func (noopScheduler) Unschedule(string) {}
