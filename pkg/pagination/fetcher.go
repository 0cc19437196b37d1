package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for page fetching.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subgraph_pages_fetched_total",
		Help: "Total pages fetched by entity (including the final empty page)",
	}, []string{"entity"})

	recordsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subgraph_records_fetched_total",
		Help: "Total records fetched by entity",
	}, []string{"entity"})
)

var (
	// ErrMissingEntity is returned when a response lacks the requested entity field.
	ErrMissingEntity = errors.New("response does not contain requested entity")

	// ErrCursorStalled is returned when a page does not advance the cursor,
	// which would otherwise loop forever or skip records.
	ErrCursorStalled = errors.New("cursor did not advance")
)

// Strategy selects how pages are addressed.
type Strategy string

const (
	// StrategyCursor pages with id_gt on the last seen id (default).
	StrategyCursor Strategy = "cursor"

	// StrategySkip pages with first/skip offsets. Limited by the source's skip ceiling.
	StrategySkip Strategy = "skip"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyCursor, StrategySkip:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown pagination strategy %q (want %q or %q)", s, StrategyCursor, StrategySkip)
	}
}

// Config holds fetcher configuration
type Config struct {
	// PageSize is the number of records requested per page
	// The Graph accepts at most 1000
	PageSize int

	// Strategy selects cursor or offset paging
	Strategy Strategy
}

// DefaultConfig returns the default fetcher configuration
func DefaultConfig() Config {
	return Config{
		PageSize: 1000,
		Strategy: StrategyCursor,
	}
}

// Querier executes one query document and returns the top-level data fields.
type Querier interface {
	Query(ctx context.Context, document string) (map[string]json.RawMessage, error)
}

// Fetcher drains collections page by page.
type Fetcher struct {
	querier Querier
	config  Config
	logger  zerolog.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(querier Querier, config Config) (*Fetcher, error) {
	if querier == nil {
		return nil, fmt.Errorf("querier is required")
	}
	if config.PageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1 (got %d)", config.PageSize)
	}
	if config.Strategy == "" {
		config.Strategy = StrategyCursor
	}
	if _, err := ParseStrategy(string(config.Strategy)); err != nil {
		return nil, err
	}

	return &Fetcher{
		querier: querier,
		config:  config,
		logger:  log.With().Str("component", "fetcher").Logger(),
	}, nil
}

// Config returns the fetcher configuration.
func (f *Fetcher) Config() Config {
	return f.config
}

// Iterator walks one collection a page at a time. It is not safe for
// concurrent use; pages are inherently sequential.
type Iterator[T any, P EntityPtr[T]] struct {
	fetcher *Fetcher
	req     Request

	cursor string
	offset int
	index  int
	pages  int
	done   bool
	err    error
}

// Iterate returns an iterator positioned before the first page.
func Iterate[T any, P EntityPtr[T]](f *Fetcher, req Request) *Iterator[T, P] {
	it := &Iterator[T, P]{fetcher: f, req: req}
	if err := req.validate(); err != nil {
		it.err = err
		it.done = true
	}
	return it
}

// Next fetches the next page. It returns ok=false once a page comes back
// empty; after an error, every further call returns the same error.
func (it *Iterator[T, P]) Next(ctx context.Context) (page []T, ok bool, err error) {
	if it.err != nil {
		return nil, false, it.err
	}
	if it.done {
		return nil, false, nil
	}

	page, err = it.fetch(ctx)
	if err != nil {
		it.err = err
		it.done = true
		return nil, false, err
	}
	if len(page) == 0 {
		it.done = true
		return nil, false, nil
	}
	return page, true, nil
}

// Pages returns the number of page requests completed so far.
func (it *Iterator[T, P]) Pages() int {
	return it.pages
}

func (it *Iterator[T, P]) fetch(ctx context.Context) ([]T, error) {
	f := it.fetcher
	size := f.config.PageSize

	var document string
	switch f.config.Strategy {
	case StrategySkip:
		document = skipQuery(it.req, it.offset, size)
	default:
		document = cursorQuery(it.req, it.cursor, size)
	}

	start := time.Now()
	data, err := f.querier.Query(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", it.req.Entity, it.pages+1, err)
	}

	raw, found := data[it.req.Entity]
	if !found {
		return nil, fmt.Errorf("fetch %s page %d: %w", it.req.Entity, it.pages+1, ErrMissingEntity)
	}

	var page []T
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode %s page %d: %w", it.req.Entity, it.pages+1, err)
	}

	it.pages++
	pagesFetchedTotal.WithLabelValues(it.req.Entity).Inc()
	recordsFetchedTotal.WithLabelValues(it.req.Entity).Add(float64(len(page)))

	f.logger.Info().
		Str("entity", it.req.Entity).
		Int("fetched", len(page)).
		Int("from", it.offset).
		Int("to", it.offset+size).
		Dur("duration", time.Since(start)).
		Msg("Fetched page")

	if len(page) == 0 {
		return page, nil
	}

	for i := range page {
		it.index++
		P(&page[i]).Base().Index = it.index
	}

	last := P(&page[len(page)-1]).Base().ID
	if f.config.Strategy == StrategyCursor && last <= it.cursor {
		return nil, fmt.Errorf("fetch %s page %d: %w (last id %q, cursor %q)",
			it.req.Entity, it.pages, ErrCursorStalled, last, it.cursor)
	}
	it.cursor = last
	it.offset += size

	return page, nil
}

// FetchAll drains the whole collection and returns every record in source
// order, indexed from 1. Any failed page fails the fetch.
func FetchAll[T any, P EntityPtr[T]](ctx context.Context, f *Fetcher, req Request) ([]T, error) {
	f.logger.Info().
		Str("entity", req.Entity).
		Str("strategy", string(f.config.Strategy)).
		Msg("Requesting all records")

	it := Iterate[T, P](f, req)

	var all []T
	for {
		page, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		all = append(all, page...)
	}

	if all == nil {
		all = []T{}
	}

	f.logger.Info().
		Str("entity", req.Entity).
		Int("records", len(all)).
		Int("pages", it.Pages()).
		Msg("Fetch complete")

	return all, nil
}
