package distance

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownMetric is returned when a metric name is not recognized.
	ErrUnknownMetric = errors.New("unknown metric")
)

// DimensionMismatchError indicates two vectors of different lengths were compared.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Metric selects the scoring function used by an index.
type Metric int

const (
	Euclidean Metric = iota
	Cosine
	DotProduct
)

// String returns the name persisted in segment metadata.
func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "Euclidean"
	case Cosine:
		return "Cosine"
	case DotProduct:
		return "DotProduct"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined metrics.
func (m Metric) Valid() bool {
	return m >= Euclidean && m <= DotProduct
}

// ParseMetric is the inverse of Metric.String.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "Euclidean":
		return Euclidean, nil
	case "Cosine":
		return Cosine, nil
	case "DotProduct":
		return DotProduct, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Score compares a and b. Higher scores mean more similar vectors.
//
// For Cosine, a zero-norm operand yields a score of 0 rather than NaN.
// Cosine accumulates in float64, so finite inputs always give a finite
// score. NaN or Inf components propagate into the score; callers ranking
// scores must handle that.
func (m Metric) Score(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Expected: len(a), Actual: len(b)}
	}

	switch m {
	case Euclidean:
		return -sqrt(SquaredL2(a, b)), nil
	case Cosine:
		return cosine(a, b), nil
	case DotProduct:
		return Dot(a, b), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
}

// cosine sums in float64: float32 squares of components near 1e20 overflow
// and those near 1e-25 underflow to zero.
func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Func is a scoring function bound to a metric.
type Func func(a, b []float32) (float32, error)

// Provider returns the scoring function for the given metric.
func Provider(m Metric) (Func, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	return m.Score, nil
}
