package distance

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestScore(t *testing.T) {
	t.Run("Euclidean", func(t *testing.T) {
		got, err := Euclidean.Score([]float32{1, 2, 3}, []float32{4, 5, 6})
		require.NoError(t, err)
		assert.InDelta(t, -5.196152, got, 1e-6)
	})

	t.Run("Cosine orthogonal", func(t *testing.T) {
		got, err := Cosine.Score([]float32{1, 0, 0}, []float32{0, 1, 0})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, got, 1e-6)
	})

	t.Run("Cosine identical", func(t *testing.T) {
		got, err := Cosine.Score([]float32{3, 4}, []float32{6, 8})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 1e-6)
	})

	t.Run("Cosine zero norm", func(t *testing.T) {
		got, err := Cosine.Score([]float32{1, 0}, []float32{0, 0})
		require.NoError(t, err)
		assert.Equal(t, float32(0), got)
		assert.False(t, math.IsNaN(float64(got)))
	})

	t.Run("Cosine extreme magnitudes", func(t *testing.T) {
		tests := []struct {
			name string
			a, b []float32
			want float64
		}{
			{"huge", []float32{1e20, 1e20}, []float32{1e20, 1e20}, 1},
			{"tiny", []float32{1e-25, 1e-25}, []float32{1e-25, 1e-25}, 1},
			{"huge vs unit", []float32{1e20, 0}, []float32{1, 0}, 1},
			{"tiny orthogonal", []float32{1e-25, 0}, []float32{0, 1e-25}, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := Cosine.Score(tt.a, tt.b)
				require.NoError(t, err)
				assert.False(t, math.IsNaN(float64(got)))
				assert.InDelta(t, tt.want, got, 1e-6)
			})
		}
	})

	t.Run("DotProduct", func(t *testing.T) {
		got, err := DotProduct.Score([]float32{1, 2, 3}, []float32{4, 5, 6})
		require.NoError(t, err)
		assert.InDelta(t, 32.0, got, 1e-6)
	})

	t.Run("DotProduct ranks aligned higher", func(t *testing.T) {
		q := []float32{1, 1}
		near, err := DotProduct.Score(q, []float32{2, 2})
		require.NoError(t, err)
		far, err := DotProduct.Score(q, []float32{-1, -1})
		require.NoError(t, err)
		assert.Greater(t, near, far)
	})

	t.Run("Dimension mismatch", func(t *testing.T) {
		for _, m := range []Metric{Euclidean, Cosine, DotProduct} {
			_, err := m.Score([]float32{1, 2}, []float32{1, 2, 3})
			var dm *DimensionMismatchError
			require.True(t, errors.As(err, &dm), m.String())
			assert.Equal(t, 2, dm.Expected)
			assert.Equal(t, 3, dm.Actual)
		}
	})

	t.Run("Unknown metric", func(t *testing.T) {
		_, err := Metric(42).Score([]float32{1}, []float32{1})
		assert.ErrorIs(t, err, ErrUnknownMetric)
	})
}

func TestMetric(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "Euclidean", Euclidean.String())
		assert.Equal(t, "Cosine", Cosine.String())
		assert.Equal(t, "DotProduct", DotProduct.String())
		assert.Equal(t, "Unknown(99)", Metric(99).String())
	})

	t.Run("Parse", func(t *testing.T) {
		for _, m := range []Metric{Euclidean, Cosine, DotProduct} {
			got, err := ParseMetric(m.String())
			require.NoError(t, err)
			assert.Equal(t, m, got)
		}

		_, err := ParseMetric("L2")
		assert.ErrorIs(t, err, ErrUnknownMetric)
		_, err = ParseMetric("cosine")
		assert.ErrorIs(t, err, ErrUnknownMetric)
	})

	t.Run("JSON", func(t *testing.T) {
		b, err := json.Marshal(struct {
			Metric Metric `json:"metric"`
		}{Cosine})
		require.NoError(t, err)
		assert.JSONEq(t, `{"metric":"Cosine"}`, string(b))

		var out struct {
			Metric Metric `json:"metric"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"metric":"DotProduct"}`), &out))
		assert.Equal(t, DotProduct, out.Metric)

		assert.Error(t, json.Unmarshal([]byte(`{"metric":"Manhattan"}`), &out))
	})

	t.Run("Provider", func(t *testing.T) {
		f, err := Provider(Euclidean)
		require.NoError(t, err)
		got, err := f([]float32{0, 0}, []float32{3, 4})
		require.NoError(t, err)
		assert.InDelta(t, -5.0, got, 1e-6)

		_, err = Provider(Metric(7))
		assert.ErrorIs(t, err, ErrUnknownMetric)
	})
}
