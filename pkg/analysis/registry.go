// Package analysis runs named Circles analyses: each one drains one or more
// subgraph collections, reshapes the records into flat rows and computes
// headline summaries with exact integer arithmetic.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for analysis runs.
var (
	analysisRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_runs_total",
		Help: "Total analysis runs by analysis and outcome",
	}, []string{"analysis", "outcome"})

	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Analysis run duration by analysis",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"analysis"})
)

var (
	// ErrUnknownAnalysis is returned when no analysis is registered under a name.
	ErrUnknownAnalysis = errors.New("unknown analysis")

	// ErrDuplicateAnalysis is returned when a name is registered twice.
	ErrDuplicateAnalysis = errors.New("analysis already registered")
)

// Env is what an analysis runs against.
type Env struct {
	Config  Config
	Fetcher *pagination.Fetcher
	Logger  zerolog.Logger
}

// NewEnv creates a run environment fetching through querier.
func NewEnv(cfg Config, querier pagination.Querier) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fetcher, err := pagination.NewFetcher(querier, cfg.Pagination())
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:  cfg,
		Fetcher: fetcher,
		Logger:  log.With().Str("component", "analysis").Logger(),
	}, nil
}

// RunFunc fetches, reshapes and summarizes.
type RunFunc func(ctx context.Context, env *Env) (*Result, error)

// Definition is a named analysis.
type Definition struct {
	Name        string
	Description string
	Run         RunFunc
}

// Registry holds analysis definitions in registration order.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("analysis name is required")
	}
	if def.Run == nil {
		return fmt.Errorf("analysis %q: run function is required", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAnalysis, def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Run executes the named analysis. A failed fetch fails the run; no partial
// result is returned.
func (r *Registry) Run(ctx context.Context, name string, env *Env) (*Result, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAnalysis, name)
	}

	logger := env.Logger.With().Str("analysis", name).Logger()
	logger.Info().Str("description", def.Description).Msg("Starting analysis")

	start := time.Now()
	res, err := def.Run(ctx, &Env{Config: env.Config, Fetcher: env.Fetcher, Logger: logger})
	duration := time.Since(start)
	analysisDuration.WithLabelValues(name).Observe(duration.Seconds())

	if err != nil {
		analysisRunsTotal.WithLabelValues(name, "error").Inc()
		logger.Error().Err(err).Dur("duration", duration).Msg("Analysis failed")
		return nil, fmt.Errorf("analysis %s: %w", name, err)
	}

	res.Analysis = name
	analysisRunsTotal.WithLabelValues(name, "success").Inc()
	logger.Info().
		Int("rows", len(res.Rows)).
		Dur("duration", duration).
		Msg("Analysis complete")

	return res, nil
}
