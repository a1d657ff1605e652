// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favefeed_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Ingestion Run Metrics
	IngestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_ingest_runs_total",
			Help: "Ingestion runs by type (manual, watch) and final status",
		},
		[]string{"type", "status"},
	)

	IngestRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favefeed_ingest_run_duration_seconds",
			Help:    "Duration of ingestion runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
		[]string{"type"},
	)

	IngestVideos = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_ingest_videos_total",
			Help: "Videos processed by outcome (added, updated, skipped)",
		},
		[]string{"outcome"},
	)

	IngestAuthors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_ingest_authors_total",
			Help: "Authors processed by outcome (added, updated)",
		},
		[]string{"outcome"},
	)

	// Watch Loop Metrics
	WatchEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_watch_events_total",
			Help: "Filesystem events seen by the watcher, by kind (discovered, ignored, replayed)",
		},
		[]string{"kind"},
	)

	WatchPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "favefeed_watch_pending_videos",
			Help: "Videos buffered for the next flush",
		},
	)

	WatchFlushBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "favefeed_watch_flush_batch_size",
			Help:    "Number of videos synced per flush",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	WatchSyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_watch_sync_failures_total",
			Help: "Per-video sync failures by reason (metadata_missing, parse, store, breaker_open)",
		},
		[]string{"reason"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "favefeed_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Export Snapshot Metrics
	SnapshotReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_export_snapshot_reads_total",
			Help: "Export snapshot reads by result (hit, miss)",
		},
		[]string{"result"},
	)

	// Ops API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favefeed_api_requests_total",
			Help: "Total number of ops API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favefeed_api_request_duration_seconds",
			Help:    "Duration of ops API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method", "route"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordIngestRun records the outcome of a bulk import or watch flush.
func RecordIngestRun(runType, status string, duration time.Duration) {
	IngestRuns.WithLabelValues(runType, status).Inc()
	IngestRunDuration.WithLabelValues(runType).Observe(duration.Seconds())
}

// RecordVideos adds n videos under the given outcome.
func RecordVideos(outcome string, n int) {
	if n > 0 {
		IngestVideos.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordAuthors adds n authors under the given outcome.
func RecordAuthors(outcome string, n int) {
	if n > 0 {
		IngestAuthors.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordWatchEvent counts one watcher event.
func RecordWatchEvent(kind string) {
	WatchEvents.WithLabelValues(kind).Inc()
}

// RecordFlush records one watch flush.
func RecordFlush(batchSize int) {
	WatchFlushBatchSize.Observe(float64(batchSize))
}

// RecordSyncFailure counts one failed per-video sync.
func RecordSyncFailure(reason string) {
	WatchSyncFailures.WithLabelValues(reason).Inc()
}

// SetPending sets the number of buffered videos.
func SetPending(n int) {
	WatchPending.Set(float64(n))
}

// RecordBreakerState records a circuit breaker transition. State values
// follow gobreaker: 0=closed, 1=half-open, 2=open.
func RecordBreakerState(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordSnapshotRead counts one export snapshot read served from cache
// (hit) or parsed from disk (miss).
func RecordSnapshotRead(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SnapshotReads.WithLabelValues(result).Inc()
}

// RecordAPIRequest records an ops API request. route is the matched route
// pattern, not the raw path.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
