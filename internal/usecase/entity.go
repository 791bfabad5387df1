package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
)

// Entity is the host-facing shell of one sensor: its config plus the last
// refresh result. Overlapping refreshes are tolerated; last write wins.
type Entity struct {
	mu              sync.RWMutex
	cfg             sensor.Config
	result          sensor.Result
	requestCount    int64
	lastRequestTime time.Time
	lastRefreshAt   time.Time
}

func NewEntity(cfg sensor.Config) *Entity {
	return &Entity{cfg: cfg}
}

func (e *Entity) UniqueID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.ID
}

func (e *Entity) Config() sensor.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

func (e *Entity) State() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result.State
}

// Attributes returns the normalized attributes plus request bookkeeping and
// the monitoring window.
func (e *Entity) Attributes() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]any, len(e.result.Attributes)+4)
	for k, v := range e.result.Attributes {
		out[k] = v
	}
	out["request_count"] = e.requestCount
	if e.lastRequestTime.IsZero() {
		out["last_request_time"] = nil
	} else {
		out["last_request_time"] = e.lastRequestTime.Format(time.RFC3339)
	}
	out["start_date"] = e.cfg.StartDate.Format(sensor.DateLayout)
	out["end_date"] = e.cfg.EndDate.Format(sensor.DateLayout)
	return out
}

// reviseWindow returns cfg with a new monitoring window. interval <= 0 keeps
// the current poll interval.
func reviseWindow(cfg sensor.Config, start, end time.Time, interval time.Duration, now time.Time) (sensor.Config, error) {
	if start.IsZero() || end.IsZero() {
		return cfg, fmt.Errorf("start and end date are required")
	}
	if end.Before(start) {
		return cfg, fmt.Errorf("end date must not be before start date")
	}
	cfg.StartDate = start
	cfg.EndDate = end
	if interval > 0 {
		cfg.PollInterval = interval
	}
	cfg.UpdatedAt = now
	return cfg, nil
}

// setConfig swaps in a config that has already been persisted.
func (e *Entity) setConfig(cfg sensor.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

func (e *Entity) LastRefreshAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastRefreshAt
}

func (e *Entity) apply(result sensor.Result, at time.Time) {
	if result.Attributes == nil {
		result.Attributes = map[string]any{}
	}
	e.mu.Lock()
	e.result = result
	e.lastRefreshAt = at
	e.mu.Unlock()
}

// clear resets the displayed state to unknown, used on rate limiting.
func (e *Entity) clear() {
	e.mu.Lock()
	e.result = sensor.Result{}
	e.mu.Unlock()
}

func (e *Entity) markRequest(at time.Time) {
	e.mu.Lock()
	e.requestCount++
	e.lastRequestTime = at
	e.mu.Unlock()
}
