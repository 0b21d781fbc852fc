package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostTransitions counts post lifecycle transitions by name.
	PostTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcms_post_transitions_total",
		Help: "Total number of post lifecycle transitions",
	}, []string{"transition"})

	// MessagesSubmitted counts accepted message submissions by kind.
	MessagesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcms_messages_submitted_total",
		Help: "Total number of submitted messages by kind",
	}, []string{"kind"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcms_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache lookups by outcome: hit, miss, error, or stale
	// when a loaded value was discarded after an invalidation.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcms_cache_lookups_total",
		Help: "Total number of cache lookups by outcome",
	}, []string{"outcome"})

	// DatabaseQueryLatency records repository call latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogcms_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// Post transition labels.
const (
	TransitionCreate          = "create"
	TransitionUpdate          = "update"
	TransitionSoftDelete      = "soft_delete"
	TransitionRestore         = "restore"
	TransitionPermanentDelete = "permanent_delete"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
