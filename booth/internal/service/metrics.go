package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booth_reservations_committed_total",
		Help: "Reservations confirmed written by the committer",
	})
	reservationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booth_reservations_rejected_total",
		Help: "Reservation units rejected while planning or committing",
	}, []string{"reason"})
	chunkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booth_commit_chunk_failures_total",
		Help: "Committer chunks that failed after all retries",
	}, []string{"uncertain"})
	reservationsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booth_reservations_deleted_total",
		Help: "Reservations removed by batch, log cascade or edit",
	})
	planDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booth_plan_duration_seconds",
		Help:    "Time spent planning a batch request",
		Buckets: prometheus.DefBuckets,
	})
)
