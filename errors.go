package nvdb

import (
	"errors"

	"github.com/hupe1980/nvdb/distance"
	"github.com/hupe1980/nvdb/index"
	"github.com/hupe1980/nvdb/segment"
)

var (
	// ErrPrecondition is returned for row-count and dimensionality violations.
	ErrPrecondition = index.ErrPrecondition

	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = index.ErrInvalidK

	// ErrUnsupportedNumericState is returned when ranking meets a NaN score.
	ErrUnsupportedNumericState = index.ErrUnsupportedNumericState

	// ErrIO wraps file create, write, read, rename and fsync failures.
	ErrIO = segment.ErrIO

	// ErrCorrupt is returned when a segment fails validation on load.
	ErrCorrupt = segment.ErrCorrupt

	// ErrUnknownMetric is returned for metric names other than
	// "Euclidean", "Cosine" and "DotProduct".
	ErrUnknownMetric = distance.ErrUnknownMetric

	// ErrClosed is returned when the DB has been closed.
	ErrClosed = errors.New("nvdb: closed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("nvdb: invalid config")
)

// DimensionMismatchError indicates a vector/query dimensionality mismatch.
//
// Use errors.As to retrieve the expected and actual lengths.
type DimensionMismatchError = distance.DimensionMismatchError
