package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.CacheLookup(true)
	c.CacheLookup(false)
	c.CacheLookup(false)
	c.FetchAttempt("espn", "standings", "ok", 120*time.Millisecond)
	c.Refresh("standings", "updated")
	c.BreakerState("football-data", true)

	require.InDelta(t, 1, testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(c.cacheLookups.WithLabelValues("miss")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.fetchAttempts.WithLabelValues("espn", "standings", "ok")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.refreshes.WithLabelValues("standings", "updated")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.breakerState.WithLabelValues("football-data")), 0)
}

func TestCollector_NilIsNoop(t *testing.T) {
	t.Parallel()

	var c *Collector
	c.CacheLookup(true)
	c.FetchAttempt("espn", "match_day", "error", time.Second)
	c.Refresh("match_day", "failed")
	c.BreakerState("espn", false)
}

func TestNew_DuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}
