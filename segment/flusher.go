package segment

import (
	"context"

	"github.com/hupe1980/nvdb/index"
)

// Flusher commits index batches as new segments under a root directory.
// Each flush gets a fresh random segment name.
type Flusher struct {
	root string
	opts []WriterOption
}

var _ index.Flusher = (*Flusher)(nil)

// NewFlusher creates a Flusher writing under root. WithName must not be
// passed: every flush needs a unique name.
func NewFlusher(root string, opts ...WriterOption) *Flusher {
	return &Flusher{root: root, opts: opts}
}

// Root returns the segments root.
func (f *Flusher) Root() string { return f.root }

// Flush implements index.Flusher.
func (f *Flusher) Flush(_ context.Context, src index.Source) (string, error) {
	w, err := NewWriter(f.root, src.Dims(), src.Metric(), f.opts...)
	if err != nil {
		return "", err
	}
	if err := w.AddSource(src); err != nil {
		return "", err
	}
	return w.Commit()
}
