package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const defaultSchedulerWorkers = 8

type SchedulerConfig struct {
	Workers   int
	MaxJitter time.Duration
	Logger    *logging.Logger
	// Jitter picks the fixed offset of one entity; defaults to uniform in [0, max].
	Jitter func(max time.Duration) time.Duration
}

// Scheduler runs one timer loop per entity and executes refreshes on a
// bounded worker pool. Each entity refreshes once when scheduled, then every
// poll interval plus its own fixed jitter.
type Scheduler struct {
	refresher Refresher
	pool      *ants.Pool
	maxJitter time.Duration
	jitter    func(max time.Duration) time.Duration
	logger    *logging.Logger

	mu      sync.Mutex
	base    context.Context
	cancel  context.CancelFunc
	loops   map[string]context.CancelFunc
	pending map[string]*Entity
	stopped bool
	wg      conc.WaitGroup
}

func NewScheduler(refresher Refresher, cfg SchedulerConfig) (*Scheduler, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultSchedulerWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	jitter := cfg.Jitter
	if jitter == nil {
		jitter = uniformJitter
	}

	return &Scheduler{
		refresher: refresher,
		pool:      pool,
		maxJitter: max(cfg.MaxJitter, 0),
		jitter:    jitter,
		logger:    logger.Named("scheduler"),
		loops:     make(map[string]context.CancelFunc),
		pending:   make(map[string]*Entity),
	}, nil
}

// Start launches loops for entities scheduled before it and every entity
// scheduled afterwards, until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base != nil || s.stopped {
		return
	}
	s.base, s.cancel = context.WithCancel(ctx)
	for id, entity := range s.pending {
		s.startLocked(entity)
		delete(s.pending, id)
	}
	s.logger.Info("scheduler started", "workers", s.pool.Cap(), "max_jitter", s.maxJitter)
}

func (s *Scheduler) Schedule(e *Entity) {
	if e == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.base == nil {
		s.pending[e.UniqueID()] = e
		return
	}
	s.startLocked(e)
}

func (s *Scheduler) Unschedule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	if cancel, ok := s.loops[id]; ok {
		cancel()
		delete(s.loops, id)
	}
}

// Stop cancels every loop, waits for in-flight refreshes and releases the pool.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.loops = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
	s.pool.Release()
	s.logger.Info("scheduler stopped")
}

// Scheduled reports how many entity loops are running.
func (s *Scheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loops)
}

func (s *Scheduler) startLocked(e *Entity) {
	id := e.UniqueID()
	if cancel, ok := s.loops[id]; ok {
		cancel()
	}
	loopCtx, cancel := context.WithCancel(s.base)
	s.loops[id] = cancel

	offset := s.jitter(s.maxJitter)
	s.wg.Go(func() {
		s.loop(loopCtx, e, offset)
	})
}

func (s *Scheduler) loop(ctx context.Context, e *Entity, offset time.Duration) {
	for {
		if err := s.run(ctx, e); err != nil {
			s.logger.Warn("submit refresh failed", "sensor_id", e.UniqueID(), "error", err)
		}

		timer := time.NewTimer(e.Config().PollInterval + offset)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// run blocks until the refresh finishes so one entity never overlaps itself.
func (s *Scheduler) run(ctx context.Context, e *Entity) error {
	if ctx.Err() != nil {
		return nil
	}
	done := make(chan struct{})
	if err := s.pool.Submit(func() {
		defer close(done)
		s.refresher.Refresh(ctx, e)
	}); err != nil {
		return err
	}
	<-done
	return nil
}

func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit) + 1))
}
