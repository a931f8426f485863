package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "logcheck_jobs_running",
			Help: "Number of job attempts currently executing",
		},
	)

	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logcheck_job_runs_total",
			Help: "Total job attempts by outcome",
		},
		[]string{"job", "outcome"},
	)

	jobSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logcheck_job_skips_total",
			Help: "Total scheduled firings dropped because all slots were busy",
		},
		[]string{"job"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logcheck_job_duration_seconds",
			Help:    "Duration of individual job attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	substrateRestartsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logcheck_substrate_restarts_total",
			Help: "Times the schedule substrate was restarted after stalling",
		},
	)

	selfChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logcheck_self_checks_total",
			Help: "Periodic self-check results",
		},
		[]string{"result"},
	)
)
