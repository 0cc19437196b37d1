package analysis

import (
	"math/big"
	"strconv"

	"github.com/CirclesUBI/circles-analysis/pkg/aggregate"
	"github.com/rs/zerolog"
)

// Unavailable is shown for a summary that has no input to aggregate.
const Unavailable = "n/a"

// Summary is one human-readable headline figure.
type Summary struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Row is one flat output record keyed by column name.
type Row map[string]string

// Result is the outcome of an analysis run.
type Result struct {
	Analysis  string    `json:"analysis"`
	Summaries []Summary `json:"summaries"`
	Columns   []string  `json:"columns"`
	Rows      []Row     `json:"rows"`
}

// Summary returns the value recorded under title.
func (r *Result) Summary(title string) (string, bool) {
	for _, s := range r.Summaries {
		if s.Title == title {
			return s.Value, true
		}
	}
	return "", false
}

// summarizer appends summaries to a result and reports empty aggregates as
// unavailable rather than failing the run.
type summarizer struct {
	result *Result
	logger zerolog.Logger
}

func (s *summarizer) add(title, value string) {
	s.result.Summaries = append(s.result.Summaries, Summary{Title: title, Value: value})
}

func (s *summarizer) count(title string, n int) {
	s.add(title, strconv.Itoa(n))
}

func (s *summarizer) wei(title string, v *big.Int) {
	s.add(title, v.String())
}

func (s *summarizer) unavailable(title string, err error) {
	s.logger.Warn().Err(err).Str("summary", title).Msg("Summary unavailable")
	s.add(title, Unavailable)
}

func (s *summarizer) averageCircles(title string, values []*big.Int) {
	avg, err := aggregate.Average(values)
	if err != nil {
		s.unavailable(title, err)
		return
	}
	s.add(title, aggregate.FormatCircles(avg))
}

func (s *summarizer) averageWei(title string, values []*big.Int) {
	avg, err := aggregate.Average(values)
	if err != nil {
		s.unavailable(title, err)
		return
	}
	s.wei(title, avg)
}

func (s *summarizer) maxCircles(title string, values []*big.Int) {
	s.add(title, aggregate.FormatCircles(aggregate.Max(values)))
}

func (s *summarizer) meanCount(title string, counts aggregate.Counts) {
	mean, err := aggregate.MeanCount(counts)
	if err != nil {
		s.unavailable(title, err)
		return
	}
	s.add(title, strconv.FormatFloat(mean, 'f', -1, 64))
}

func (s *summarizer) maxCount(title string, counts aggregate.Counts) {
	highest, err := aggregate.MaxCount(counts)
	if err != nil {
		s.unavailable(title, err)
		return
	}
	s.count(title, highest)
}

// project keeps only the named columns of each row.
func project(rows []Row, columns ...string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		p := make(Row, len(columns))
		for _, c := range columns {
			p[c] = row[c]
		}
		out[i] = p
	}
	return out
}
