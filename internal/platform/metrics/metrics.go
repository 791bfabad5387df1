package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "matchfeed"

// Collector owns the service's prometheus series. A nil *Collector is a no-op.
type Collector struct {
	fetchAttempts *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Upstream fetch attempts by source, data kind and outcome.",
		}, []string{"source", "kind", "outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of single upstream fetch attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Sensor refresh invocations by data kind and outcome.",
		}, []string{"kind", "outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named upstream circuit breaker is open or half open.",
		}, []string{"name"}),
	}

	if reg == nil {
		return c, nil
	}
	for _, collector := range []prometheus.Collector{c.fetchAttempts, c.fetchLatency, c.cacheLookups, c.refreshes, c.breakerState} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) FetchAttempt(source, kind, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.fetchAttempts.WithLabelValues(source, kind, outcome).Inc()
	c.fetchLatency.WithLabelValues(source).Observe(took.Seconds())
}

func (c *Collector) CacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) Refresh(kind, outcome string) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) BreakerState(name string, open bool) {
	if c == nil {
		return
	}
	value := 0.0
	if open {
		value = 1
	}
	c.breakerState.WithLabelValues(name).Set(value)
}
