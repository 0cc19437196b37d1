package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subgraph_cache_hits_total",
			Help: "Total number of subgraph response cache hits",
		},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subgraph_cache_misses_total",
			Help: "Total number of subgraph response cache misses",
		},
	)

	// CacheSize tracks bytes written to the cache
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subgraph_cache_size_bytes",
			Help: "Bytes of subgraph responses written to the cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraph_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
