package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline Prometheus metrics.
var (
	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of each search pipeline stage",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	SearchCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_candidates_total",
			Help:      "Candidates returned to callers, by source",
		},
		[]string{"source"},
	)

	SearchDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_degraded_total",
			Help:      "Pipeline stages that failed and were skipped",
		},
		[]string{"stage"},
	)

	DiscoveryBranchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_branches_total",
			Help:      "Discovery fan-out branches by outcome",
		},
		[]string{"outcome"}, // "ok" / "error" / "timeout"
	)

	ExternalRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_request_duration_seconds",
			Help:      "Latency of calls to external providers",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "status"},
	)

	RateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions",
		},
		[]string{"function", "decision"}, // "allowed" / "rejected" / "failed_open"
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers pipeline, provider and rate-limit metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(
			SearchStageDuration,
			SearchCandidatesTotal,
			SearchDegradedTotal,
			DiscoveryBranchesTotal,
			ExternalRequestDuration,
			RateLimitDecisionsTotal,
		)
	})
}

// ObserveStage records how long a pipeline stage took since start.
func ObserveStage(stage string, start time.Time) {
	SearchStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveExternal records an external provider call.
func ObserveExternal(service string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExternalRequestDuration.WithLabelValues(service, status).Observe(time.Since(start).Seconds())
}
