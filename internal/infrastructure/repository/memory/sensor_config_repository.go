package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
)

// SensorConfigRepository keeps configs for the lifetime of the process.
type SensorConfigRepository struct {
	mu    sync.RWMutex
	items map[string]sensor.Config
}

func NewSensorConfigRepository(seed []sensor.Config) *SensorConfigRepository {
	items := make(map[string]sensor.Config, len(seed))
	for _, cfg := range seed {
		items[cfg.ID] = cfg
	}
	return &SensorConfigRepository{items: items}
}

func (r *SensorConfigRepository) Upsert(_ context.Context, cfg sensor.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cfg.ID] = cfg
	return nil
}

func (r *SensorConfigRepository) GetByID(_ context.Context, id string) (sensor.Config, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.items[id]
	if !ok {
		return sensor.Config{}, false, nil
	}
	return cfg, true, nil
}

func (r *SensorConfigRepository) List(_ context.Context) ([]sensor.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sensor.Config, 0, len(r.items))
	for _, cfg := range r.items {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SensorConfigRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
