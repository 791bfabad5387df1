package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

type countingRefresher struct {
	mu     sync.Mutex
	counts map[string]int
	signal chan string
}

func newCountingRefresher() *countingRefresher {
	return &countingRefresher{counts: make(map[string]int), signal: make(chan string, 64)}
}

func (r *countingRefresher) Refresh(_ context.Context, e *Entity) RefreshOutcome {
	id := e.UniqueID()
	r.mu.Lock()
	r.counts[id]++
	r.mu.Unlock()
	select {
	case r.signal <- id:
	default:
	}
	return OutcomeUpdated
}

func (r *countingRefresher) Count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[id]
}

func schedulerEntity(id string, interval time.Duration) *Entity {
	return NewEntity(sensor.Config{
		ID:           id,
		Name:         id,
		Source:       sensor.SourceESPN,
		Sport:        sensor.SportSoccer,
		Kind:         sensor.KindAllTodayMatches,
		PollInterval: interval,
	})
}

func waitForRefreshes(t *testing.T, r *countingRefresher, id string, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for r.Count(id) < want {
		select {
		case <-r.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for %d refreshes of %s: got=%d", want, id, r.Count(id))
		}
	}
}

func TestScheduler_RefreshesImmediatelyThenOnInterval(t *testing.T) {
	t.Parallel()

	refresher := newCountingRefresher()
	scheduler, err := NewScheduler(refresher, SchedulerConfig{
		Workers: 2,
		Logger:  logging.NewNop(),
		Jitter:  func(time.Duration) time.Duration { return 0 },
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Scheduled before Start: held until the scheduler runs.
	scheduler.Schedule(schedulerEntity("early", 20*time.Millisecond))
	if got := refresher.Count("early"); got != 0 {
		t.Fatalf("refresh before start: got=%d", got)
	}

	scheduler.Start(context.Background())
	scheduler.Schedule(schedulerEntity("late", time.Hour))

	waitForRefreshes(t, refresher, "early", 3)
	waitForRefreshes(t, refresher, "late", 1)
	if got := scheduler.Scheduled(); got != 2 {
		t.Fatalf("unexpected loop count: got=%d want=2", got)
	}
}

func TestScheduler_UnscheduleStopsLoop(t *testing.T) {
	t.Parallel()

	refresher := newCountingRefresher()
	scheduler, err := NewScheduler(refresher, SchedulerConfig{
		Workers: 1,
		Logger:  logging.NewNop(),
		Jitter:  func(time.Duration) time.Duration { return 0 },
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer scheduler.Stop()

	scheduler.Start(context.Background())
	scheduler.Schedule(schedulerEntity("gone", 10*time.Millisecond))
	waitForRefreshes(t, refresher, "gone", 2)

	scheduler.Unschedule("gone")
	time.Sleep(30 * time.Millisecond)
	settled := refresher.Count("gone")
	time.Sleep(60 * time.Millisecond)
	if got := refresher.Count("gone"); got != settled {
		t.Fatalf("refreshes continued after unschedule: before=%d after=%d", settled, got)
	}
	if got := scheduler.Scheduled(); got != 0 {
		t.Fatalf("unexpected loop count: got=%d want=0", got)
	}
}

func TestScheduler_StopIsIdempotentAndRejectsNewWork(t *testing.T) {
	t.Parallel()

	refresher := newCountingRefresher()
	scheduler, err := NewScheduler(refresher, SchedulerConfig{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	scheduler.Start(context.Background())
	scheduler.Stop()
	scheduler.Stop()

	scheduler.Schedule(schedulerEntity("after-stop", time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	if got := refresher.Count("after-stop"); got != 0 {
		t.Fatalf("refresh after stop: got=%d", got)
	}
}

func TestUniformJitterStaysInRange(t *testing.T) {
	t.Parallel()

	if got := uniformJitter(0); got != 0 {
		t.Fatalf("zero limit: got=%s", got)
	}
	for i := 0; i < 200; i++ {
		got := uniformJitter(30 * time.Second)
		if got < 0 || got > 30*time.Second {
			t.Fatalf("jitter out of range: %s", got)
		}
	}
}
