// Command circles-analysis fetches Circles UBI subgraph data and prints
// aggregate statistics, optionally exporting the rows as CSV or JSON.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/CirclesUBI/circles-analysis/pkg/analysis"
	"github.com/CirclesUBI/circles-analysis/pkg/cache"
	"github.com/CirclesUBI/circles-analysis/pkg/export"
	"github.com/CirclesUBI/circles-analysis/pkg/graph"
	"github.com/CirclesUBI/circles-analysis/pkg/logging"
	"github.com/CirclesUBI/circles-analysis/pkg/metrics"
	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(analysis.Builtin()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	endpoint    string
	format      string
	output      string
	relayer     string
	pageSize    int
	pagination  string
	redisURL    string
	cacheTTL    time.Duration
	logLevel    string
	pretty      bool
	metricsAddr string

	logger zerolog.Logger
}

func newRootCommand(registry *analysis.Registry) *cobra.Command {
	defaults := analysis.DefaultConfig()
	opts := &options{}

	root := &cobra.Command{
		Use:           "circles-analysis",
		Short:         "Analyse Circles UBI subgraph data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logging.Setup(logging.Config{
				Level:  level,
				Pretty: opts.pretty,
				Output: cmd.ErrOrStderr(),
			})
			opts.logger = logging.NewLogger("cli")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.endpoint, "endpoint", "e", getEnv("CIRCLES_ENDPOINT", defaults.Endpoint), "GraphQL subgraph endpoint")
	flags.StringVarP(&opts.format, "format", "f", getEnv("CIRCLES_FORMAT", defaults.Format), "File format of output file: csv, json")
	flags.StringVarP(&opts.output, "output", "o", "", "Optional file output for tabular data")
	flags.StringVarP(&opts.relayer, "relayer-address", "s", getEnv("CIRCLES_RELAYER_ADDRESS", defaults.RelayerAddress), "Address of the relayer safe receiving gas fees")
	flags.IntVar(&opts.pageSize, "page-size", getEnvInt("CIRCLES_PAGE_SIZE", defaults.PageSize), "Records requested per page")
	flags.StringVar(&opts.pagination, "pagination", getEnv("CIRCLES_PAGINATION", string(defaults.Strategy)), "Pagination strategy: cursor, skip")
	flags.StringVar(&opts.redisURL, "redis-url", getEnv("REDIS_URL", ""), "Redis URL for caching query responses (empty = disabled)")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", cache.DefaultTTL, "Cache TTL when the subgraph sends no max-age")
	flags.StringVar(&opts.logLevel, "log-level", getEnv("LOG_LEVEL", string(logging.LevelInfo)), "Log level: debug, info, warn, error, disabled")
	flags.BoolVar(&opts.pretty, "pretty", false, "Human-readable log output")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", getEnv("METRICS_ADDR", ""), "Serve Prometheus metrics on this address while running")

	for _, name := range registry.Names() {
		def, _ := registry.Get(name)
		root.AddCommand(&cobra.Command{
			Use:   name,
			Short: def.Description,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, registry, def)
			},
		})
	}

	return root
}

func (o *options) config() (analysis.Config, export.Format, error) {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return analysis.Config{}, "", err
	}
	strategy, err := pagination.ParseStrategy(o.pagination)
	if err != nil {
		return analysis.Config{}, "", err
	}

	// Merge keeps the default for a non-positive page size
	if o.pageSize < 1 {
		return analysis.Config{}, "", fmt.Errorf("page size must be >= 1 (got %d)", o.pageSize)
	}

	cfg := analysis.DefaultConfig().Merge(analysis.Config{
		Endpoint:       o.endpoint,
		PageSize:       o.pageSize,
		Strategy:       strategy,
		RelayerAddress: o.relayer,
		Format:         string(format),
	})
	return cfg, format, cfg.Validate()
}

func (o *options) run(cmd *cobra.Command, registry *analysis.Registry, def analysis.Definition) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, format, err := o.config()
	if err != nil {
		return o.fail(cmd, err)
	}

	if o.metricsAddr != "" {
		if _, err := metrics.Serve(ctx, o.metricsAddr); err != nil {
			return o.fail(cmd, err)
		}
	}

	graphCfg := graph.DefaultConfig(cfg.Endpoint)
	graphCfg.CacheTTL = o.cacheTTL
	if o.redisURL != "" {
		rdb, err := cache.Connect(ctx, o.redisURL)
		if err != nil {
			return o.fail(cmd, err)
		}
		defer rdb.Close()
		graphCfg.Redis = rdb
	}

	client, err := graph.New(graphCfg)
	if err != nil {
		return o.fail(cmd, err)
	}
	env, err := analysis.NewEnv(cfg, client)
	if err != nil {
		return o.fail(cmd, err)
	}

	fmt.Fprintf(out, "Analyse %q (%s):\n", def.Name, def.Description)

	res, err := registry.Run(ctx, def.Name, env)
	if err != nil {
		return o.fail(cmd, err)
	}

	printResult(out, res)

	if o.output != "" {
		if err := export.WriteFile(o.output, format, res); err != nil {
			return o.fail(cmd, err)
		}
		fmt.Fprintf(out, "Stored results in %s\n", o.output)
	}
	return nil
}

func (o *options) fail(cmd *cobra.Command, err error) error {
	o.logger.Error().Err(err).Msg("Analysis failed")
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return err
}

func printResult(w io.Writer, res *analysis.Result) {
	for _, s := range res.Summaries {
		fmt.Fprintf(w, "◆ %s: %s\n", s.Title, s.Value)
	}
	fmt.Fprintf(w, "Done processing %d data entries total!\n", len(res.Rows))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
