// Package graph provides the HTTP client that executes GraphQL queries
// against a subgraph endpoint, with optional Redis response caching.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CirclesUBI/circles-analysis/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for subgraph queries.
var (
	subgraphRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subgraph_requests_total",
		Help: "Total subgraph queries by HTTP status (or cache)",
	}, []string{"status"})

	subgraphRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "subgraph_request_duration_seconds",
		Help:    "Subgraph query duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	subgraphErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subgraph_errors_total",
		Help: "Total subgraph query errors by class",
	}, []string{"class"})
)

// Client executes GraphQL documents against one subgraph endpoint.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the subgraph URL (REQUIRED)
	Endpoint string

	// UserAgent header sent with every query
	UserAgent string

	// Timeout per query
	Timeout time.Duration

	// Redis enables the response cache when non-nil
	Redis *redis.Client

	// CacheTTL is used when the subgraph sends no Cache-Control max-age
	CacheTTL time.Duration
}

// DefaultConfig returns a default configuration for the given endpoint.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:  endpoint,
		UserAgent: "circles-analysis/1.0",
		Timeout:   60 * time.Second,
		CacheTTL:  cache.DefaultTTL,
	}
}

// New creates a new subgraph client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint must be an http(s) URL (got %q)", cfg.Endpoint)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "graph-client").Logger(),
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

type request struct {
	Query string `json:"query"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query executes a GraphQL document and returns the top-level fields of its
// "data" object, undecoded. Any failure is a *QueryError.
func (c *Client) Query(ctx context.Context, document string) (map[string]json.RawMessage, error) {
	document = strings.Join(strings.Fields(document), " ")

	cacheKey := cache.CacheKey{Endpoint: c.config.Endpoint, Query: document}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			var data map[string]json.RawMessage
			if err := json.Unmarshal(entry.Data, &data); err == nil {
				subgraphRequestsTotal.WithLabelValues("cache").Inc()
				c.logger.Debug().Str("query", document).Msg("Serving query from cache")
				return data, nil
			}
			c.logger.Warn().Msg("Cached query response is not a data object, refetching")
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
	}

	startTime := time.Now()
	defer func() {
		subgraphRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	body, err := json.Marshal(request{Query: document})
	if err != nil {
		return nil, c.fail(&QueryError{ErrorClass: ErrorClassDecode, Message: "encode request", Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(&QueryError{ErrorClass: ErrorClassNetwork, Message: "create request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().Str("query", document).Msg("Executing subgraph query")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		subgraphRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, c.fail(&QueryError{ErrorClass: ErrorClassNetwork, Message: "http request failed", Err: err})
	}
	defer resp.Body.Close()

	subgraphRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&QueryError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(&QueryError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		})
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, c.fail(&QueryError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode response",
			Err:        err,
		})
	}

	if len(out.Errors) > 0 {
		messages := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			messages[i] = e.Message
		}
		return nil, c.fail(&QueryError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassGraphQL,
			Message:    strings.Join(messages, "; "),
		})
	}

	if out.Data == nil {
		return nil, c.fail(&QueryError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "response has no data",
		})
	}

	if c.cache != nil {
		c.store(ctx, cacheKey, resp.Header, out.Data)
	}

	return out.Data, nil
}

// store writes a successful response to the cache. Failures only cost a refetch.
func (c *Client) store(ctx context.Context, key cache.CacheKey, headers http.Header, data map[string]json.RawMessage) {
	ttl := cache.ResponseTTL(headers, c.config.CacheTTL)
	if ttl <= 0 {
		return
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to encode response for cache")
		return
	}

	if err := c.cache.Set(ctx, key, cache.NewEntry(encoded, ttl)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}

	c.logger.Debug().Dur("ttl", ttl).Msg("Cached response")
}

func (c *Client) fail(err *QueryError) error {
	subgraphErrorsTotal.WithLabelValues(string(err.ErrorClass)).Inc()

	c.logger.Warn().
		Str("endpoint", c.config.Endpoint).
		Int("status", err.StatusCode).
		Str("error_class", string(err.ErrorClass)).
		Msg(err.Message)

	return err
}

// Endpoint returns the subgraph URL this client queries.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
