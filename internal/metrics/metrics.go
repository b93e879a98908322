// Package metrics defines the Prometheus instruments exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route pattern, method, and
	// status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wheelhouse_http_requests_total",
		Help: "Total HTTP requests handled.",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern and method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wheelhouse_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// LedgerRebuilds counts cost basis partition rebuilds by outcome.
	LedgerRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wheelhouse_ledger_rebuilds_total",
		Help: "Total cost basis partition rebuilds.",
	}, []string{"outcome"})

	// LedgerRebuildDuration tracks how long a partition rebuild takes.
	// Partitions hold hundreds to low thousands of events, so the buckets
	// top out early.
	LedgerRebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wheelhouse_ledger_rebuild_duration_seconds",
		Help:    "Cost basis partition rebuild duration in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// SnapshotCacheHits and SnapshotCacheMisses track read-through cache
	// effectiveness for ledger snapshots.
	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wheelhouse_snapshot_cache_hits_total",
		Help: "Snapshot cache hits.",
	})
	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wheelhouse_snapshot_cache_misses_total",
		Help: "Snapshot cache misses.",
	})
)
