// Package metrics holds the Prometheus collectors shared by handlers and
// services. Recording helpers are no-ops until Init is called, so services
// can be exercised in tests without a registry.
package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// M holds all Prometheus collectors for the content warning backend.
var M = struct {
	VotesTotal          *prometheus.CounterVec
	AutoDeletionsTotal  prometheus.Counter
	CascadeStepFailures *prometheus.CounterVec
	DemotionsTotal      prometheus.Counter
	DiscardedTotal      prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
	RequestsInFlight    prometheus.Gauge
	DBPoolActive        prometheus.GaugeFunc
	DBPoolIdle          prometheus.GaugeFunc
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
}{}

var initialized bool

// Init registers all Prometheus metrics. Call once at startup.
func Init(pool *pgxpool.Pool) {
	M.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cw_votes_total",
			Help: "Total votes received, by direction and result.",
		},
		[]string{"direction", "result"},
	)

	M.AutoDeletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cw_auto_deletions_total",
			Help: "Warnings deleted because downvotes crossed the deletion threshold.",
		},
	)

	M.CascadeStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cw_cascade_step_failures_total",
			Help: "Deletion cascade steps that could not complete, by step.",
		},
		[]string{"step"},
	)

	M.DemotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cw_contributor_demotions_total",
			Help: "Contributors moved to low-trust status.",
		},
	)

	M.DiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cw_discarded_submissions_total",
			Help: "Submissions silently dropped from low-trust contributors.",
		},
	)

	M.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cw_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	M.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cw_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	M.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cw_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	M.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cw_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	// DB pool gauges read live stats from pgxpool
	if pool != nil {
		M.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "cw_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		M.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "cw_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(M.DBPoolActive, M.DBPoolIdle)
	}

	prometheus.MustRegister(
		M.VotesTotal,
		M.AutoDeletionsTotal,
		M.CascadeStepFailures,
		M.DemotionsTotal,
		M.DiscardedTotal,
		M.RequestDuration,
		M.RequestsInFlight,
		M.CacheHits,
		M.CacheMisses,
	)
	initialized = true
}

// Enabled reports whether Init has run.
func Enabled() bool {
	return initialized
}

func VoteRecorded(direction, result string) {
	if initialized {
		M.VotesTotal.WithLabelValues(direction, result).Inc()
	}
}

func AutoDeletion() {
	if initialized {
		M.AutoDeletionsTotal.Inc()
	}
}

func CascadeStepFailed(step string) {
	if initialized {
		M.CascadeStepFailures.WithLabelValues(step).Inc()
	}
}

func Demotion() {
	if initialized {
		M.DemotionsTotal.Inc()
	}
}

func SubmissionDiscarded() {
	if initialized {
		M.DiscardedTotal.Inc()
	}
}

func CacheHit() {
	if initialized {
		M.CacheHits.Inc()
	}
}

func CacheMiss() {
	if initialized {
		M.CacheMisses.Inc()
	}
}
