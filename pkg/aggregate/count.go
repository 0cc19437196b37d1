package aggregate

import (
	"sort"
)

// Counts maps an observed value to its number of occurrences.
type Counts map[string]int

// CountBy tallies, for every field present on any row, how often each distinct
// value occurs across all rows.
func CountBy[R ~map[string]string](rows []R) map[string]Counts {
	out := make(map[string]Counts)
	for _, row := range rows {
		for field, value := range row {
			counts, ok := out[field]
			if !ok {
				counts = make(Counts)
				out[field] = counts
			}
			counts[value]++
		}
	}
	return out
}

// Values returns the occurrence counts ordered by key, so that callers
// iterating them get a deterministic sequence.
func (c Counts) Values() []int {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = c[k]
	}
	return out
}

// MeanCount is the arithmetic mean of the occurrence counts.
// Counts are small integers, not amounts, so a float result is fine here.
func MeanCount(c Counts) (float64, error) {
	if len(c) == 0 {
		return 0, ErrEmptyInput
	}
	total := 0
	for _, v := range c.Values() {
		total += v
	}
	return float64(total) / float64(len(c)), nil
}

// MaxCount returns the largest occurrence count.
func MaxCount(c Counts) (int, error) {
	if len(c) == 0 {
		return 0, ErrEmptyInput
	}
	highest := 0
	for _, v := range c {
		if v > highest {
			highest = v
		}
	}
	return highest, nil
}
