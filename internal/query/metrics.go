package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the query layer's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	fetches   *prometheus.CounterVec
	retries   *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	evictions prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gpumon",
			Subsystem: "query",
			Name:      "fetch_total",
			Help:      "Completed fetches by query key and result.",
		}, []string{"key", "result"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gpumon",
			Subsystem: "query",
			Name:      "retries_total",
			Help:      "Retried attempts by query key.",
		}, []string{"key"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gpumon",
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Fetches served from a fresh cache entry.",
		}, []string{"key"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gpumon",
			Subsystem: "query",
			Name:      "evictions_total",
			Help:      "Cache entries removed by garbage collection.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gpumon",
			Subsystem: "query",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of a fetch including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches, m.retries, m.cacheHits, m.evictions, m.duration)
	}
	return m
}

func (m *Metrics) observe(key Key, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(string(key), result).Inc()
	m.duration.WithLabelValues(string(key)).Observe(d.Seconds())
}

func (m *Metrics) retry(key Key) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(string(key)).Inc()
}

func (m *Metrics) cacheHit(key Key) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(string(key)).Inc()
}

func (m *Metrics) evicted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.evictions.Add(float64(n))
}
