package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Throughput, labelled by outcome: ok, invalid, failed, timeout.
	Projections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vectraproj_projections_total",
		Help: "Total number of projection requests by outcome",
	}, []string{"status"})

	VectorsProjected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vectraproj_vectors_projected_total",
		Help: "Total number of vectors successfully projected",
	})

	// Projections are CPU bound and grow quadratically with input size,
	// so the buckets reach well past the defaults.
	ProjectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vectraproj_projection_duration_seconds",
		Help:    "Time taken to compute a projection",
		Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vectraproj_cache_hits_total",
		Help: "Projection requests answered from the result cache",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vectraproj_cache_misses_total",
		Help: "Projection requests that had to be computed",
	})
)
