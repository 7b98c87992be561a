package dispatch

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueDepth is only updated from worker goroutines, one writer per shard.
var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apijr",
			Subsystem: "dispatch",
			Name:      "submissions_total",
			Help:      "Jobs accepted for execution.",
		},
		[]string{"queue", "shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apijr",
			Subsystem: "dispatch",
			Name:      "queue_full_total",
			Help:      "Enqueue attempts that timed out because the shard was full.",
		},
		[]string{"queue", "shard"},
	)

	panicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apijr",
			Subsystem: "dispatch",
			Name:      "job_panics_total",
			Help:      "Jobs that panicked and were recovered.",
		},
		[]string{"queue"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apijr",
			Subsystem: "dispatch",
			Name:      "run_duration_seconds",
			Help:      "Job execution latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"queue", "shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "apijr",
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Current depth of each shard queue.",
		},
		[]string{"queue", "shard"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
