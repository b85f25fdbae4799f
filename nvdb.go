package nvdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/nvdb/distance"
	"github.com/hupe1980/nvdb/index"
	"github.com/hupe1980/nvdb/segment"
	"github.com/hupe1980/nvdb/staging"
)

// Match is a search hit.
type Match = index.Match

// DB ties the in-memory index to a staging store and a segments root.
//
// DB is safe for concurrent use: searches share a read lock, inserts and
// flushes take the write lock.
type DB struct {
	mu sync.RWMutex

	cfg        Config
	idx        *index.Index
	flusher    *observedFlusher
	closeStage func() error
	logger     *Logger
	metrics    MetricsCollector
	closed     bool
}

// Open validates cfg, creates the segments root and opens the staging store.
func Open(ctx context.Context, cfg Config, optFns ...Option) (*DB, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.flushThreshold > 0 {
		cfg.FlushThreshold = opts.flushThreshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.SegmentsRoot, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create segments root: %w", ErrIO, err)
	}

	db := &DB{
		cfg:     cfg,
		logger:  opts.logger,
		metrics: opts.metrics,
	}
	db.flusher = &observedFlusher{
		next:    segment.NewFlusher(cfg.SegmentsRoot, segment.WithWriterLogger(opts.logger.Logger)),
		logger:  opts.logger,
		metrics: opts.metrics,
	}

	stage := opts.stage
	if stage == nil {
		b, err := staging.OpenWithOptions(staging.BadgerOptions{
			Dir:      cfg.StagingPath,
			InMemory: cfg.StagingPath == "",
			Logger:   opts.logger.Logger,
		})
		if err != nil {
			return nil, err
		}
		stage = b
		db.closeStage = b.Close
	}

	idx, err := index.New(cfg.Dimension, cfg.Metric, nil, nil,
		index.WithStager(stage),
		index.WithFlusher(db.flusher),
		index.WithFlushThreshold(cfg.FlushThreshold),
		index.WithLogger(opts.logger.Logger),
	)
	if err != nil {
		_ = db.close()
		return nil, err
	}
	db.idx = idx

	opts.logger.InfoContext(ctx, "db opened",
		"segments_root", cfg.SegmentsRoot,
		"staging_path", cfg.StagingPath,
		"dimension", cfg.Dimension,
		"metric", cfg.Metric.String(),
		"flush_threshold", cfg.FlushThreshold,
	)
	return db, nil
}

// Config returns the effective configuration.
func (db *DB) Config() Config { return db.cfg }

// Dimension returns the vector length.
func (db *DB) Dimension() int { return db.cfg.Dimension }

// Metric returns the similarity metric.
func (db *DB) Metric() distance.Metric { return db.cfg.Metric }

// Len returns the number of resident, not yet flushed rows.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.idx == nil {
		return 0
	}
	return db.idx.Len()
}

// Insert stages and appends a row, flushing if the batch grew past the
// flush threshold.
func (db *DB) Insert(ctx context.Context, id uint64, vec []float32) (err error) {
	start := time.Now()
	defer func() {
		db.metrics.RecordInsert(time.Since(start), err)
		db.logger.LogInsert(ctx, id, len(vec), err)
	}()

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	return db.idx.Insert(ctx, id, vec)
}

// Search returns the k most similar resident rows to query.
func (db *DB) Search(ctx context.Context, query []float32, k int) (matches []Match, err error) {
	start := time.Now()
	defer func() {
		db.metrics.RecordSearch(k, time.Since(start), err)
		db.logger.LogSearch(ctx, k, len(matches), err)
	}()

	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}
	return db.idx.Search(query, k)
}

// Flush commits the resident batch as a new segment and returns its path.
func (db *DB) Flush(ctx context.Context) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return "", ErrClosed
	}
	return db.idx.Flush(ctx)
}

// observedFlusher logs and records every flush, explicit or triggered by
// an insert crossing the threshold.
type observedFlusher struct {
	next    *segment.Flusher
	logger  *Logger
	metrics MetricsCollector
}

func (f *observedFlusher) Flush(ctx context.Context, src index.Source) (string, error) {
	start := time.Now()
	path, err := f.next.Flush(ctx, src)
	f.metrics.RecordFlush(src.Len(), time.Since(start), err)
	f.logger.LogFlush(ctx, path, src.Len(), time.Since(start), err)
	return path, err
}

// LastSegment returns the path of the most recently committed segment.
func (db *DB) LastSegment() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.idx == nil {
		return ""
	}
	return db.idx.LastSegment()
}

// Segments lists committed segment names under the segments root.
func (db *DB) Segments() ([]string, error) {
	return segment.List(db.cfg.SegmentsRoot)
}

// LoadSegment loads the named segment into a new, read-only index.
func (db *DB) LoadSegment(ctx context.Context, name string) (idx *index.Index, err error) {
	defer func() {
		n := 0
		if idx != nil {
			n = idx.Len()
		}
		db.logger.LogLoad(ctx, name, n, err)
	}()

	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: invalid segment name %q", ErrPrecondition, name)
	}
	r, err := segment.Open(filepath.Join(db.cfg.SegmentsRoot, name))
	if err != nil {
		return nil, err
	}
	return r.LoadIndex()
}

// Close closes the staging store if the DB opened it. Resident rows that
// were not flushed stay only in the staging store.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	return db.close()
}

func (db *DB) close() error {
	if db.closeStage == nil {
		return nil
	}
	err := db.closeStage()
	db.closeStage = nil
	return err
}
