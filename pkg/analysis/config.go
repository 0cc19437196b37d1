package analysis

import (
	"fmt"

	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
)

// Default configuration values.
const (
	DefaultEndpoint       = "https://api.thegraph.com/subgraphs/name/circlesubi/circles-ubi"
	DefaultRelayerAddress = "0x0739a8D036c966aC9161Ea14855CE0f94C15B87b"
	DefaultFormat         = "csv"
)

// Config holds the resolved settings shared by every analysis run.
// It is read-only once a run has started.
type Config struct {
	// Endpoint is the subgraph GraphQL URL
	Endpoint string

	// PageSize is the number of records requested per page
	PageSize int

	// Strategy selects cursor or skip pagination
	Strategy pagination.Strategy

	// RelayerAddress receives gas fee transfers
	RelayerAddress string

	// Format is the export format tag ("csv" or "json")
	Format string
}

// DefaultConfig returns the default analysis configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		PageSize:       pagination.DefaultConfig().PageSize,
		Strategy:       pagination.StrategyCursor,
		RelayerAddress: DefaultRelayerAddress,
		Format:         DefaultFormat,
	}
}

// Merge returns c with every non-zero field of override applied.
func (c Config) Merge(override Config) Config {
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.PageSize > 0 {
		c.PageSize = override.PageSize
	}
	if override.Strategy != "" {
		c.Strategy = override.Strategy
	}
	if override.RelayerAddress != "" {
		c.RelayerAddress = override.RelayerAddress
	}
	if override.Format != "" {
		c.Format = override.Format
	}
	return c
}

// Validate checks the settings the fetcher depends on.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1 (got %d)", c.PageSize)
	}
	if _, err := pagination.ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	return nil
}

// Pagination returns the fetcher configuration derived from c.
func (c Config) Pagination() pagination.Config {
	return pagination.Config{
		PageSize: c.PageSize,
		Strategy: c.Strategy,
	}
}
