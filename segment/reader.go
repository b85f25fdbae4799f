package segment

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nvdb/distance"
	"github.com/hupe1980/nvdb/index"
	"github.com/hupe1980/nvdb/internal/fs"
	"github.com/hupe1980/nvdb/internal/mmap"
)

type readerOptions struct {
	fs fs.FileSystem
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

// WithReaderFileSystem sets the filesystem used to read the segment.
func WithReaderFileSystem(fsys fs.FileSystem) ReaderOption {
	return func(o *readerOptions) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// Reader reads a committed segment.
type Reader struct {
	fs  fs.FileSystem
	dir string
}

// Open checks that dir is a committed segment directory containing the ids,
// vectors and metadata files.
func Open(dir string, optFns ...ReaderOption) (*Reader, error) {
	opts := readerOptions{fs: fs.Default}
	for _, fn := range optFns {
		fn(&opts)
	}

	if strings.HasSuffix(filepath.Base(dir), TmpSuffix) {
		return nil, fmt.Errorf("%w: %s", ErrNotCommitted, dir)
	}

	fi, err := opts.fs.Stat(dir)
	if err != nil {
		return nil, ioErr("open segment", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIO, dir)
	}

	for _, name := range []string{IDsFileName, VectorsFileName, MetaFileName} {
		fi, err := opts.fs.Stat(filepath.Join(dir, name))
		if err != nil {
			return nil, ioErr("open segment", err)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", ErrCorrupt, filepath.Join(dir, name))
		}
	}

	return &Reader{fs: opts.fs, dir: dir}, nil
}

// Dir returns the segment directory.
func (r *Reader) Dir() string { return r.dir }

// Name returns the segment name.
func (r *Reader) Name() string { return filepath.Base(r.dir) }

// Metadata parses the metadata file.
func (r *Reader) Metadata() (Metadata, error) {
	md, _, err := r.metadata()
	return md, err
}

func (r *Reader) metadata() (Metadata, distance.Metric, error) {
	data, err := r.fs.ReadFile(filepath.Join(r.dir, MetaFileName))
	if err != nil {
		return Metadata{}, 0, ioErr("read "+MetaFileName, err)
	}
	return decodeMetadata(data)
}

// LoadIndex reads the whole segment into a new index. Either a fully valid
// index or an error is returned.
func (r *Reader) LoadIndex(opts ...index.Option) (*index.Index, error) {
	md, metric, err := r.metadata()
	if err != nil {
		return nil, err
	}
	if uint64(md.Dim) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: dimension %d out of range", ErrCorrupt, md.Dim)
	}
	count, dim := int(md.Count), int(md.Dim)

	idsLen := uint64(count) * idSize
	hi, vecLen := bits.Mul64(uint64(count), uint64(dim)*floatSize)
	if hi != 0 {
		return nil, fmt.Errorf("%w: count %d with dim %d overflows", ErrCorrupt, count, dim)
	}

	var ids []uint64
	var flat []float32

	var g errgroup.Group
	g.Go(func() error {
		var err error
		ids, err = r.readIDs(idsLen)
		return err
	})
	g.Go(func() error {
		var err error
		flat, err = r.readVectors(vecLen)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}

	idx, err := index.New(dim, metric, ids, vectors, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return idx, nil
}

func (r *Reader) readIDs(size uint64) ([]uint64, error) {
	data, release, err := r.readData(IDsFileName, size)
	if err != nil {
		return nil, err
	}
	defer release()

	ids := make([]uint64, len(data)/idSize)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint64(data[i*idSize:])
	}
	return ids, nil
}

func (r *Reader) readVectors(size uint64) ([]float32, error) {
	data, release, err := r.readData(VectorsFileName, size)
	if err != nil {
		return nil, err
	}
	defer release()

	vals := make([]float32, len(data)/floatSize)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*floatSize:]))
	}
	return vals, nil
}

// readData returns the contents of a segment file, which must be exactly
// size bytes as derived from the metadata. Local files are memory mapped;
// release must be called once the bytes are decoded.
func (r *Reader) readData(name string, size uint64) ([]byte, func(), error) {
	path := filepath.Join(r.dir, name)

	if _, ok := r.fs.(fs.LocalFS); ok {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, nil, ioErr("read "+name, err)
		}
		if uint64(m.Len()) != size {
			_ = m.Close()
			return nil, nil, sizeError(name, m.Len(), size)
		}
		return m.Bytes(), func() { _ = m.Close() }, nil
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, nil, ioErr("read "+name, err)
	}
	if uint64(len(data)) != size {
		return nil, nil, sizeError(name, len(data), size)
	}
	return data, func() {}, nil
}

func sizeError(name string, got int, want uint64) error {
	return fmt.Errorf("%w: %s is %d bytes, metadata implies %d", ErrCorrupt, name, got, want)
}
