// Package metrics holds the Prometheus collectors shared by the HTTP server
// and the cronjob runner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "toolshed"

// Job item outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeErrored   = "errored"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	JobItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_items_total",
			Help:      "Sweep job items by job and outcome.",
		},
		[]string{"job", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of one sweep job run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	ActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_activations_total",
			Help:      "Reservation activation attempts by result (activated, declined, failed).",
		},
		[]string{"result"},
	)

	AllocationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_transitions_total",
			Help:      "Committed allocation status changes.",
		},
		[]string{"from", "to"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_cache_lookups_total",
			Help:      "Availability snapshot cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)
)

// RecordJobItems adds a finished run's counters.
func RecordJobItems(job string, processed, skipped, errored int) {
	JobItemsTotal.WithLabelValues(job, OutcomeProcessed).Add(float64(processed))
	JobItemsTotal.WithLabelValues(job, OutcomeSkipped).Add(float64(skipped))
	JobItemsTotal.WithLabelValues(job, OutcomeErrored).Add(float64(errored))
}
