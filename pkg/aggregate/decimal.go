// Package aggregate implements the pure aggregation functions used by the
// analyses: arbitrary-precision sums, averages and maxima over decimal-string
// amounts, frequency counting, and day bucketing.
//
// Amounts are parsed into math/big integers at the boundary and never pass
// through a floating-point representation.
package aggregate

import (
	"math/big"
)

// ParseAmount parses a non-negative base-10 integer literal.
// Signs, whitespace, separators and prefixes are rejected.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, &NumberFormatError{Value: s}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, &NumberFormatError{Value: s}
		}
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &NumberFormatError{Value: s}
	}
	return n, nil
}

// ParseAmounts parses every literal, reporting the index of the first bad one.
func ParseAmounts(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		n, err := ParseAmount(v)
		if err != nil {
			return nil, &NumberFormatError{Value: v, Position: i}
		}
		out[i] = n
	}
	return out, nil
}

// Sum adds all values. The sum of no values is zero.
func Sum(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v)
	}
	return total
}

// Average returns floor(sum / len(values)).
// Returns ErrEmptyInput rather than dividing by zero.
func Average(values []*big.Int) (*big.Int, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	total := Sum(values)
	return total.Quo(total, big.NewInt(int64(len(values)))), nil
}

// Max returns the numerically largest value, or zero for no values.
func Max(values []*big.Int) *big.Int {
	highest := new(big.Int)
	for _, v := range values {
		if v.Cmp(highest) > 0 {
			highest.Set(v)
		}
	}
	return highest
}

// SumDecimal adds decimal-string amounts and returns the total as a decimal string.
func SumDecimal(values []string) (string, error) {
	parsed, err := ParseAmounts(values)
	if err != nil {
		return "", err
	}
	return Sum(parsed).String(), nil
}

// AverageDecimal returns the floor average of decimal-string amounts.
func AverageDecimal(values []string) (string, error) {
	parsed, err := ParseAmounts(values)
	if err != nil {
		return "", err
	}
	avg, err := Average(parsed)
	if err != nil {
		return "", err
	}
	return avg.String(), nil
}

// MaxDecimal returns the numerically largest decimal-string amount ("0" when empty).
func MaxDecimal(values []string) (string, error) {
	parsed, err := ParseAmounts(values)
	if err != nil {
		return "", err
	}
	return Max(parsed).String(), nil
}
