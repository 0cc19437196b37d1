package aggregate

import (
	"errors"
	"fmt"
)

// Common errors returned by the aggregation functions.
var (
	// ErrInvalidNumberFormat is returned when an amount is not a non-negative base-10 integer literal.
	ErrInvalidNumberFormat = errors.New("invalid number format")

	// ErrEmptyInput is returned when an aggregation needs at least one element.
	ErrEmptyInput = errors.New("empty input")
)

// NumberFormatError reports the offending literal and its position in the input.
type NumberFormatError struct {
	Value    string
	Position int
}

// Error implements the error interface.
func (e *NumberFormatError) Error() string {
	return fmt.Sprintf("%v: %q at position %d", ErrInvalidNumberFormat, e.Value, e.Position)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *NumberFormatError) Unwrap() error {
	return ErrInvalidNumberFormat
}
