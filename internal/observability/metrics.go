package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthEvents counts authentication outcomes by operation and result.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_auth_events_total",
		Help: "Authentication events by operation and outcome",
	}, []string{"operation", "outcome"})

	// AccessDecisions counts project access decisions by effect.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_access_decisions_total",
		Help: "Project visibility decisions by action and effect",
	}, []string{"action", "effect"})

	// UniqueConflicts counts storage-level unique constraint violations.
	UniqueConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_unique_conflicts_total",
		Help: "Unique constraint violations translated to conflicts",
	}, []string{"table"})

	// CacheResults counts cache lookups by cache and result.
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_cache_results_total",
		Help: "Cache lookups by layer and result",
	}, []string{"layer", "result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projecthub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the process-wide HTTP metrics middleware. Collectors are
// registered with the default registry once.
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}
