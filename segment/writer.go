package segment

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/nvdb/distance"
	"github.com/hupe1980/nvdb/index"
	"github.com/hupe1980/nvdb/internal/fs"
)

type writerOptions struct {
	fs     fs.FileSystem
	name   string
	logger *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

// WithFileSystem sets the filesystem used to build the segment.
func WithFileSystem(fsys fs.FileSystem) WriterOption {
	return func(o *writerOptions) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithName sets the final segment name instead of a random UUID.
func WithName(name string) WriterOption {
	return func(o *writerOptions) {
		o.name = name
	}
}

// WithWriterLogger sets the logger for commit steps.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(o *writerOptions) {
		o.logger = l
	}
}

// Writer accumulates rows and commits them as one segment.
// A Writer is single-use and not safe for concurrent use.
type Writer struct {
	fs      fs.FileSystem
	root    string
	name    string
	dim     int
	metric  distance.Metric
	ids     []uint64
	vectors []float32
	logger  *slog.Logger
	used    bool
}

// NewWriter creates a writer for a new segment under root.
func NewWriter(root string, dim int, metric distance.Metric, optFns ...WriterOption) (*Writer, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dimension %d", index.ErrPrecondition, dim)
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %w: %d", index.ErrPrecondition, distance.ErrUnknownMetric, int(metric))
	}

	opts := writerOptions{fs: fs.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.name == "" {
		opts.name = uuid.NewString()
	}
	if err := validName(opts.name); err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrPrecondition, err)
	}

	return &Writer{
		fs:     opts.fs,
		root:   root,
		name:   opts.name,
		dim:    dim,
		metric: metric,
		logger: opts.logger,
	}, nil
}

// Name returns the final segment name.
func (w *Writer) Name() string { return w.name }

// Len returns the number of buffered rows.
func (w *Writer) Len() int { return len(w.ids) }

// Add buffers one row.
func (w *Writer) Add(id uint64, vec []float32) error {
	if len(vec) != w.dim {
		return fmt.Errorf("%w: %w", index.ErrPrecondition, &index.DimensionMismatchError{Expected: w.dim, Actual: len(vec)})
	}
	w.ids = append(w.ids, id)
	w.vectors = append(w.vectors, vec...)
	return nil
}

// AddSource buffers every row of src in order.
func (w *Writer) AddSource(src index.Source) error {
	if src.Dims() != w.dim {
		return fmt.Errorf("%w: %w", index.ErrPrecondition, &index.DimensionMismatchError{Expected: w.dim, Actual: src.Dims()})
	}
	if src.Metric() != w.metric {
		return fmt.Errorf("%w: metric %s does not match writer metric %s", index.ErrPrecondition, src.Metric(), w.metric)
	}
	return src.Rows(w.Add)
}

// Commit durably writes the buffered rows and makes the segment visible.
// It returns the final segment directory.
//
// If the final fsync of the root fails, the segment is already visible: the
// path is returned together with the error.
func (w *Writer) Commit() (string, error) {
	if w.used {
		return "", ErrWriterClosed
	}
	w.used = true

	if uint64(len(w.ids)) > math.MaxUint32 {
		return "", fmt.Errorf("%w: %d rows exceed segment capacity", index.ErrPrecondition, len(w.ids))
	}

	start := time.Now()
	tmpDir := filepath.Join(w.root, w.name+TmpSuffix)
	finalDir := filepath.Join(w.root, w.name)

	if err := w.fs.MkdirAll(w.root, 0o755); err != nil {
		return "", ioErr("create root", err)
	}
	if err := w.fs.Mkdir(tmpDir, 0o755); err != nil {
		return "", ioErr("create working directory", err)
	}

	md := Metadata{
		Count:  uint32(len(w.ids)),
		Dim:    uint(w.dim),
		Metric: w.metric.String(),
	}
	mdBytes, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	files := &openFiles{}
	defer files.closeAll()

	steps := []struct {
		name  string
		write func(*bufio.Writer) error
	}{
		{IDsFileName, w.writeIDs},
		{VectorsFileName, w.writeVectors},
		{MetaFileName, func(bw *bufio.Writer) error {
			_, err := bw.Write(mdBytes)
			return err
		}},
	}
	for _, s := range steps {
		if err := files.create(w.fs, filepath.Join(tmpDir, s.name), s.write); err != nil {
			return "", err
		}
	}

	// All file contents must be durable before the segment becomes visible.
	if err := files.syncAll(); err != nil {
		return "", err
	}
	if err := files.closeAll(); err != nil {
		return "", err
	}
	w.debug("segment files synced", "dir", tmpDir)

	if _, err := w.fs.Stat(finalDir); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, finalDir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", ioErr("stat final directory", err)
	}

	if err := w.fs.Rename(tmpDir, finalDir); err != nil {
		return "", ioErr("rename", err)
	}
	if err := fs.SyncDir(w.fs, w.root); err != nil {
		return finalDir, ioErr("sync root", err)
	}

	if w.logger != nil {
		w.logger.Debug("segment committed",
			"segment", w.name,
			"count", md.Count,
			"dim", md.Dim,
			"metric", md.Metric,
			"duration", time.Since(start),
		)
	}
	return finalDir, nil
}

func (w *Writer) writeIDs(bw *bufio.Writer) error {
	var buf [idSize]byte
	for _, id := range w.ids {
		binary.LittleEndian.PutUint64(buf[:], id)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeVectors(bw *bufio.Writer) error {
	var buf [floatSize]byte
	for _, v := range w.vectors {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, append([]any{"segment", w.name}, args...)...)
	}
}

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// openFiles tracks the files of a segment being built so they can be synced
// as a group and closed on any exit path.
type openFiles struct {
	files []fs.File
	names []string
}

func (o *openFiles) create(fsys fs.FileSystem, path string, write func(*bufio.Writer) error) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ioErr("create "+filepath.Base(path), err)
	}
	o.files = append(o.files, f)
	o.names = append(o.names, filepath.Base(path))

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return ioErr("write "+filepath.Base(path), err)
	}
	if err := bw.Flush(); err != nil {
		return ioErr("write "+filepath.Base(path), err)
	}
	return nil
}

func (o *openFiles) syncAll() error {
	for i, f := range o.files {
		if err := f.Sync(); err != nil {
			return ioErr("sync "+o.names[i], err)
		}
	}
	return nil
}

// closeAll closes every tracked file once and returns the first error.
func (o *openFiles) closeAll() error {
	var first error
	for i, f := range o.files {
		if err := f.Close(); err != nil && first == nil {
			first = ioErr("close "+o.names[i], err)
		}
	}
	o.files, o.names = nil, nil
	return first
}
