// Package metrics provides the Prometheus registry and HTTP exposition for
// the analysis tool. All metrics are defined in their respective packages
// (graph, pagination, cache, analysis) to maintain modularity and avoid
// circular dependencies.
//
// This package documents the available metrics and serves them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry is the default Prometheus registry used by the tool.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns a mux serving /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Serve exposes Handler on addr until ctx is cancelled. It returns the bound
// address once listening, so ":0" can be used in tests.
func Serve(ctx context.Context, addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("component", "metrics").Msg("Metrics server failed")
		}
	}()

	bound := ln.Addr().String()
	log.Info().Str("component", "metrics").Str("addr", bound).Msg("Serving metrics")
	return bound, nil
}

// Metrics Documentation
//
// Request Metrics (pkg/graph):
//   - subgraph_requests_total{status} (Counter): Total queries by HTTP status
//   - subgraph_request_duration_seconds (Histogram): Query duration
//   - subgraph_errors_total{class} (Counter): Errors by class (network, server, client, graphql, decode)
//
// Pagination Metrics (pkg/pagination):
//   - subgraph_pages_fetched_total{entity} (Counter): Pages fetched, including the final empty page
//   - subgraph_records_fetched_total{entity} (Counter): Records fetched
//
// Cache Metrics (pkg/cache):
//   - subgraph_cache_hits_total (Counter): Query responses served from redis
//   - subgraph_cache_misses_total (Counter): Queries not found in redis
//   - subgraph_cache_size_bytes (Gauge): Bytes of responses written to the cache
//   - subgraph_cache_errors_total{operation} (Counter): Cache operation errors
//
// Analysis Metrics (pkg/analysis):
//   - analysis_runs_total{analysis, outcome} (Counter): Runs by analysis and outcome (success, error)
//   - analysis_duration_seconds{analysis} (Histogram): Run duration by analysis
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(subgraph_cache_hits_total[5m])) /
//   (sum(rate(subgraph_cache_hits_total[5m])) + sum(rate(subgraph_cache_misses_total[5m])))
//
//   # Records per second by entity
//   rate(subgraph_records_fetched_total[1m])
//
//   # Query Error Rate
//   rate(subgraph_errors_total[5m])
//
//   # P95 Query Latency
//   histogram_quantile(0.95, rate(subgraph_request_duration_seconds_bucket[5m]))
