package index

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/nvdb/distance"
)

// Match is a single search result.
type Match struct {
	ID    uint64
	Score float32
}

// Index is a brute-force vector index over id/vector pairs kept in
// insertion order. Duplicate ids are allowed.
type Index struct {
	dims    int
	metric  distance.Metric
	score   distance.Func
	ids     []uint64
	vectors [][]float32
	opts    options

	lastSegment string
}

// New creates an index from caller-supplied rows. ids and vectors are copied.
func New(dims int, metric distance.Metric, ids []uint64, vectors [][]float32, optFns ...Option) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: invalid dimension %d", ErrPrecondition, dims)
	}
	score, err := distance.Provider(metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, &RowCountMismatchError{IDs: len(ids), Vectors: len(vectors)})
	}

	vecs := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dims {
			return nil, dimensionError(dims, len(v))
		}
		vecs[i] = slices.Clone(v)
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Index{
		dims:    dims,
		metric:  metric,
		score:   score,
		ids:     slices.Clone(ids),
		vectors: vecs,
		opts:    opts,
	}, nil
}

// Len returns the number of resident rows.
func (x *Index) Len() int { return len(x.ids) }

// Dims returns the dimensionality of the index.
func (x *Index) Dims() int { return x.dims }

// Metric returns the scoring metric of the index.
func (x *Index) Metric() distance.Metric { return x.metric }

// LastSegment returns the path of the most recent segment committed by this
// index, or "" if it never flushed.
func (x *Index) LastSegment() string { return x.lastSegment }

// Rows implements Source.
func (x *Index) Rows(fn func(id uint64, vec []float32) error) error {
	for i, id := range x.ids {
		if err := fn(id, x.vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// Footprint returns the estimated resident size of the vectors in bytes.
func (x *Index) Footprint() uint64 {
	return uint64(len(x.ids)) * uint64(x.dims) * RecordSize
}

// Insert mirrors the row into the staging store, appends it, and flushes the
// whole index if the estimated footprint exceeds the flush threshold.
//
// A staging failure leaves the index unchanged. A flush failure is returned
// after the row has been appended; the resident rows are kept.
func (x *Index) Insert(ctx context.Context, id uint64, vec []float32) error {
	if len(vec) != x.dims {
		return dimensionError(x.dims, len(vec))
	}

	if x.opts.stager != nil {
		if err := x.opts.stager.Put(ctx, id, vec); err != nil {
			return fmt.Errorf("stage %d: %w", id, err)
		}
	}

	x.ids = append(x.ids, id)
	x.vectors = append(x.vectors, slices.Clone(vec))

	if x.opts.flusher == nil || x.Footprint() <= x.opts.flushThreshold {
		return nil
	}

	if _, err := x.Flush(ctx); err != nil {
		return err
	}
	return nil
}

// Flush persists every resident row through the configured Flusher and,
// on success, starts a fresh empty batch. It returns the committed segment path.
func (x *Index) Flush(ctx context.Context) (string, error) {
	if x.opts.flusher == nil {
		return "", ErrNoFlusher
	}

	start := time.Now()
	path, err := x.opts.flusher.Flush(ctx, x)
	if err != nil {
		if x.opts.logger != nil {
			x.opts.logger.DebugContext(ctx, "flush failed", "count", x.Len(), "dim", x.dims, "error", err)
		}
		return "", fmt.Errorf("flush: %w", err)
	}

	if x.opts.logger != nil {
		x.opts.logger.DebugContext(ctx, "flush committed",
			"segment", path,
			"count", x.Len(),
			"dim", x.dims,
			"metric", x.metric.String(),
			"duration", time.Since(start),
		)
	}

	x.lastSegment = path
	x.Reset()
	return path, nil
}

// Reset drops all resident rows. Dimensionality, metric and options are kept.
func (x *Index) Reset() {
	x.ids = nil
	x.vectors = nil
}

type scored struct {
	pos   int
	score float32
}

// Search scores every resident vector against query and returns the best
// min(k, Len()) matches in decreasing score order. Equal scores keep
// insertion order. A NaN score aborts the search with
// ErrUnsupportedNumericState. k == 0 yields no matches; negative k is
// rejected with ErrInvalidK.
func (x *Index) Search(query []float32, k int) ([]Match, error) {
	if len(query) != x.dims {
		return nil, dimensionError(x.dims, len(query))
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if k == 0 {
		return []Match{}, nil
	}

	candidates := make([]scored, len(x.vectors))
	for i, v := range x.vectors {
		s, err := x.score(query, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
		}
		if math.IsNaN(float64(s)) {
			return nil, fmt.Errorf("%w: NaN score for id %d at row %d", ErrUnsupportedNumericState, x.ids[i], i)
		}
		candidates[i] = scored{pos: i, score: s}
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	n := min(k, len(candidates))
	matches := make([]Match, n)
	for i := range n {
		c := candidates[i]
		matches[i] = Match{ID: x.ids[c.pos], Score: c.score}
	}
	return matches, nil
}
