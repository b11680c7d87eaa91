// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	FeeCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fee_calculations_total",
			Help: "Total number of fee calculations by fee type",
		},
		[]string{"fee_type"},
	)

	DuplicateChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_duplicate_checks_total",
			Help: "Total duplicate checks by result",
		},
		[]string{"result"},
	)

	MSASweepPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "msa_sweep_pending_agreements",
			Help: "Pending MSA approvals seen by the last sweep",
		},
	)
)
