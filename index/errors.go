package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nvdb/distance"
)

var (
	// ErrPrecondition is returned when caller-supplied data violates the
	// index shape (row counts, dimensionality).
	ErrPrecondition = errors.New("precondition violation")

	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrUnsupportedNumericState is returned when a NaN score is produced
	// while ranking candidates.
	ErrUnsupportedNumericState = errors.New("unsupported numeric state")

	// ErrNoFlusher is returned by Flush when the index has no flusher.
	ErrNoFlusher = errors.New("index has no flusher")
)

// DimensionMismatchError indicates a vector/query dimensionality mismatch.
type DimensionMismatchError = distance.DimensionMismatchError

// RowCountMismatchError indicates ids and vectors of different lengths.
type RowCountMismatchError struct {
	IDs     int
	Vectors int
}

func (e *RowCountMismatchError) Error() string {
	return fmt.Sprintf("row count mismatch: %d ids, %d vectors", e.IDs, e.Vectors)
}

func dimensionError(expected, actual int) error {
	return fmt.Errorf("%w: %w", ErrPrecondition, &DimensionMismatchError{Expected: expected, Actual: actual})
}
