// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the dashboard server: API latency and
// throughput, DuckDB query performance, graph build and query timings,
// the graph snapshot cache and feedback volume.

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Graph metrics
	GraphBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graph_build_duration_seconds",
			Help:    "Duration of similarity graph construction in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GraphNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_nodes",
			Help: "Node count of the most recently built similarity graph",
		},
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_edges",
			Help: "Edge count of the most recently built similarity graph",
		},
	)

	DacusQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dacus_queries_total",
			Help: "Total number of Dacus number queries by outcome",
		},
		[]string{"outcome"}, // found, not_found, unreachable
	)

	// Graph snapshot cache metrics
	GraphCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "graph_cache_hits_total",
			Help: "Total number of graph snapshot cache hits",
		},
	)

	GraphCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "graph_cache_misses_total",
			Help: "Total number of graph snapshot cache misses",
		},
	)

	// Feedback metrics
	FeedbackSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_saved_total",
			Help: "Total number of saved feedback rows",
		},
		[]string{"kind", "verdict"}, // kind: admin, public
	)

	// Artwork prober metrics
	ArtworkProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artwork_probes_total",
			Help: "Total number of artwork URL probes by result",
		},
		[]string{"result"}, // ok, failed, rejected
	)

	// Backup metrics
	BackupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_duration_seconds",
			Help:    "Duration of backup creation in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful backup",
		},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published on the internal bus",
		},
		[]string{"topic"},
	)
)

// ObserveAPIRequest records one completed HTTP request.
func ObserveAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery records one database query.
func ObserveDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// ObserveGraphBuild records one graph construction.
func ObserveGraphBuild(duration time.Duration, nodes, edges int) {
	GraphBuildDuration.Observe(duration.Seconds())
	GraphNodes.Set(float64(nodes))
	GraphEdges.Set(float64(edges))
}
