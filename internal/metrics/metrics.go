// Package metrics exposes Prometheus instruments for job submissions and
// result loads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

var (
	JobSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_job_submissions_total",
			Help: "Total number of search job submissions by outcome",
		},
		[]string{"outcome"},
	)

	JobSubmitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prospect_job_submit_duration_seconds",
			Help:    "Time from job submission to backend acknowledgement",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	ResultLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_result_loads_total",
			Help: "Total number of result list loads by outcome",
		},
		[]string{"outcome"},
	)

	ResultLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prospect_result_load_duration_seconds",
			Help:    "Duration of result list loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ResultRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prospect_result_records",
			Help: "Number of lead records currently held",
		},
	)
)
