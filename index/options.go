package index

import (
	"context"
	"log/slog"

	"github.com/hupe1980/nvdb/distance"
)

const (
	// DefaultFlushThreshold is the estimated resident size above which an
	// insert triggers a flush.
	DefaultFlushThreshold uint64 = 1 << 30

	// RecordSize is the byte size of one vector component.
	RecordSize = 4
)

// Stager mirrors inserts into an external staging store.
type Stager interface {
	Put(ctx context.Context, id uint64, vec []float32) error
}

// Source is a read-only view over an index's rows.
type Source interface {
	Dims() int
	Metric() distance.Metric
	Len() int
	// Rows calls fn for every row in insertion order and stops at the first error.
	Rows(fn func(id uint64, vec []float32) error) error
}

// Flusher persists a full batch of rows and returns where it was committed.
type Flusher interface {
	Flush(ctx context.Context, src Source) (string, error)
}

type options struct {
	stager         Stager
	flusher        Flusher
	flushThreshold uint64
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		flushThreshold: DefaultFlushThreshold,
	}
}

// Option configures an Index.
type Option func(*options)

// WithStager mirrors every insert into s before it is applied.
func WithStager(s Stager) Option {
	return func(o *options) {
		o.stager = s
	}
}

// WithFlusher enables size-triggered and explicit flushes through f.
func WithFlusher(f Flusher) Option {
	return func(o *options) {
		o.flusher = f
	}
}

// WithFlushThreshold sets the estimated resident footprint in bytes above
// which Insert flushes. Zero keeps the default.
func WithFlushThreshold(bytes uint64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.flushThreshold = bytes
		}
	}
}

// WithLogger sets the logger for flush events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
