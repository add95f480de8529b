// Package metrics exposes Prometheus metrics for the findr backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_jobs_started_total",
			Help: "Total number of resume evaluations submitted to the analyzer",
		},
	)

	EvaluationsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_jobs_finished_total",
			Help: "Total number of evaluations reaching a terminal state",
		},
		[]string{"outcome"},
	)

	EvaluationPolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_status_polls_total",
			Help: "Total number of status polls against the analyzer",
		},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_duration_seconds",
			Help:    "Wall-clock duration of evaluations from submission to terminal state",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		},
	)

	EvaluationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evaluation_jobs_active",
			Help: "Number of evaluations currently being polled",
		},
	)

	ApplicationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_received_total",
			Help: "Total number of public application submissions",
		},
		[]string{"analyzed"},
	)

	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)
)
