// Package metrics holds the prometheus collectors for the matching pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline run outcomes.
const (
	OutcomeMatched   = "matched"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
	OutcomeCanceled  = "canceled"
	OutcomeNoMatches = "no_matches"
)

var (
	registerOnce sync.Once

	pipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "pipeline_runs_total",
		Help:      "Total number of match pipeline runs by outcome",
	}, []string{"outcome"})
	pipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lostfound",
		Name:      "pipeline_run_duration_seconds",
		Help:      "Histogram of match pipeline run durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	matchesRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "matches_recorded_total",
		Help:      "Total number of match rows created or re-scored",
	})
	notificationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "notifications_created_total",
		Help:      "Total number of match notifications sent to students",
	})
	upsertFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "match_upsert_failures_total",
		Help:      "Total number of failed match writes",
	})
	notificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "notification_failures_total",
		Help:      "Total number of failed notification writes",
	})
	dispatchDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lostfound",
		Name:      "dispatch_dropped_total",
		Help:      "Total number of pipeline runs dropped because the queue was full or closed",
	})
	queuedRuns = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lostfound",
		Name:      "dispatch_queued_runs",
		Help:      "Number of pipeline runs waiting for a worker",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(pipelineRuns, pipelineDuration, matchesRecorded, notificationsCreated,
			upsertFailures, notificationFailures, dispatchDropped, queuedRuns)
	})
}

// Pipeline helpers
func IncPipelineRun(outcome string) { pipelineRuns.WithLabelValues(outcome).Inc() }
func ObservePipelineDuration(d time.Duration) {
	pipelineDuration.Observe(d.Seconds())
}
func IncMatchesRecorded()      { matchesRecorded.Inc() }
func IncNotificationsCreated() { notificationsCreated.Inc() }
func IncUpsertFailures()       { upsertFailures.Inc() }
func IncNotificationFailures() { notificationFailures.Inc() }

// Dispatcher helpers
func IncDispatchDropped() { dispatchDropped.Inc() }
func SetQueuedRuns(n int) { queuedRuns.Set(float64(n)) }
