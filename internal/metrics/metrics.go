package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_runs_total",
			Help: "Backup runs by trigger and outcome",
		},
		[]string{"trigger", "status"},
	)

	Restores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_restores_total",
			Help: "Restore operations by outcome",
		},
		[]string{"status"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_sweep_duration_seconds",
			Help:    "Duration of full tenant sweeps",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	SweepTenantFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_sweep_tenant_failures_total",
			Help: "Tenants whose scheduled backup failed during a sweep",
		},
	)
)
