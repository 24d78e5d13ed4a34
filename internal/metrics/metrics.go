// Package metrics defines the prometheus instruments shared by the
// engine and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stlmaps"

var (
	// TileFetches counts transport fetches by tile kind and outcome.
	TileFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tile_fetches_total",
		Help:      "Tile fetches by kind (raster/vector) and outcome (ok/error).",
	}, []string{"kind", "outcome"})

	// CacheLookups counts cache gets by kind and outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by kind (raster/vector/grid) and outcome (hit/miss).",
	}, []string{"kind", "outcome"})

	// OperationDuration times the engine operations.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Engine operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)

// ObserveOp records the elapsed time of one engine operation.
func ObserveOp(op string, start time.Time) {
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
