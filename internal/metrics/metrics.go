// Package metrics declares the Prometheus collectors of the network engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotdex_cache_hits_total",
		Help: "Network view requests served from the result cache",
	}, []string{"view"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotdex_cache_misses_total",
		Help: "Network view requests that had to be built",
	}, []string{"view"})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotdex_cache_errors_total",
		Help: "Result cache backend failures, by operation",
	}, []string{"op"})

	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotdex_view_build_duration_seconds",
		Help:    "Time to filter, resolve and project a network view",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"view"})

	AccessorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotdex_accessor_duration_seconds",
		Help:    "Association store query latency",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"query"})

	AccessorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cotdex_accessor_errors_total",
		Help: "Association store query failures",
	}, []string{"query"})

	ViewSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotdex_view_elements",
		Help:    "Nodes and edges in projected views",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"kind"})
)
