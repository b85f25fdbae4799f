package segment

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nvdb/distance"
	"github.com/hupe1980/nvdb/index"
	"github.com/hupe1980/nvdb/internal/fs"
)

func newTestWriter(t *testing.T, root string, opts ...WriterOption) *Writer {
	t.Helper()
	w, err := NewWriter(root, 3, distance.Euclidean, opts...)
	require.NoError(t, err)
	require.NoError(t, w.Add(1, []float32{1, 2, 3}))
	require.NoError(t, w.Add(2, []float32{4, 5, 6}))
	require.NoError(t, w.Add(3, []float32{7, 8, 9}))
	return w
}

func TestWriter_RoundTrip(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root, WithName("test_segment"))

	path, err := w.Commit()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "test_segment"), path)

	for _, name := range []string{IDsFileName, VectorsFileName, MetaFileName} {
		assert.FileExists(t, filepath.Join(path, name))
	}
	assert.NoDirExists(t, filepath.Join(root, "test_segment"+TmpSuffix))

	r, err := Open(path)
	require.NoError(t, err)
	idx, err := r.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 3, idx.Dims())

	for want, q := range map[uint64][]float32{1: {1, 2, 3}, 2: {4, 5, 6}, 3: {7, 8, 9}} {
		res, err := idx.Search(q, 1)
		require.NoError(t, err)
		assert.Equal(t, want, res[0].ID)
	}
}

func TestWriter_FileFormat(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, 2, distance.Cosine, WithName("fmt"))
	require.NoError(t, err)
	require.NoError(t, w.Add(0x0102030405060708, []float32{1.5, -2}))
	require.NoError(t, w.Add(7, []float32{0, 3}))

	path, err := w.Commit()
	require.NoError(t, err)

	ids, err := os.ReadFile(filepath.Join(path, IDsFileName))
	require.NoError(t, err)
	require.Len(t, ids, 16)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, ids[:8])
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(ids[8:]))

	vecs, err := os.ReadFile(filepath.Join(path, VectorsFileName))
	require.NoError(t, err)
	require.Len(t, vecs, 16)
	want := []float32{1.5, -2, 0, 3}
	for i, v := range want {
		assert.Equal(t, v, math.Float32frombits(binary.LittleEndian.Uint32(vecs[i*4:])))
	}

	meta, err := os.ReadFile(filepath.Join(path, MetaFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2,"dim":2,"metric":"Cosine"}`, string(meta))
}

func TestWriter_UniqueNames(t *testing.T) {
	root := t.TempDir()
	a, err := NewWriter(root, 1, distance.Euclidean)
	require.NoError(t, err)
	b, err := NewWriter(root, 1, distance.Euclidean)
	require.NoError(t, err)
	assert.NotEqual(t, a.Name(), b.Name())

	pa, err := a.Commit()
	require.NoError(t, err)
	pb, err := b.Commit()
	require.NoError(t, err)
	assert.NotEqual(t, pa, pb)

	names, err := List(root)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestWriter_Preconditions(t *testing.T) {
	root := t.TempDir()

	_, err := NewWriter(root, 0, distance.Euclidean)
	assert.ErrorIs(t, err, index.ErrPrecondition)

	_, err = NewWriter(root, 2, distance.Metric(5))
	assert.ErrorIs(t, err, index.ErrPrecondition)

	for _, name := range []string{"a/b", "seg.tmp", "..", "."} {
		_, err = NewWriter(root, 2, distance.Euclidean, WithName(name))
		assert.ErrorIs(t, err, index.ErrPrecondition, name)
	}

	w, err := NewWriter(root, 2, distance.Euclidean)
	require.NoError(t, err)
	assert.ErrorIs(t, w.Add(1, []float32{1}), index.ErrPrecondition)
	assert.Equal(t, 0, w.Len())

	src, err := index.New(3, distance.Euclidean, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, w.AddSource(src), index.ErrPrecondition)

	cos, err := index.New(2, distance.Cosine, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, w.AddSource(cos), index.ErrPrecondition)
}

func TestWriter_SingleUse(t *testing.T) {
	w := newTestWriter(t, t.TempDir())
	_, err := w.Commit()
	require.NoError(t, err)

	_, err = w.Commit()
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestWriter_ExistingName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "taken", "x"), 0o755))

	w := newTestWriter(t, root, WithName("taken"))
	_, err := w.Commit()
	assert.ErrorIs(t, err, ErrExists)
	assert.DirExists(t, filepath.Join(root, "taken"+TmpSuffix))
}

func TestWriter_EmptySegment(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, 4, distance.DotProduct)
	require.NoError(t, err)

	path, err := w.Commit()
	require.NoError(t, err)

	r, err := Open(path)
	require.NoError(t, err)
	md, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, Metadata{Count: 0, Dim: 4, Metric: "DotProduct"}, md)

	idx, err := r.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 4, idx.Dims())
}

func TestWriter_StepOrder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "segments")
	ffs := fs.NewFaultyFS(nil)
	w := newTestWriter(t, root, WithFileSystem(ffs), WithName("ordered"))

	_, err := w.Commit()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mkdir ordered.tmp",
		"open " + IDsFileName,
		"open " + VectorsFileName,
		"open " + MetaFileName,
		"sync " + IDsFileName,
		"sync " + VectorsFileName,
		"sync " + MetaFileName,
		"rename ordered.tmp",
		"open segments",
		"sync segments",
	}, ffs.Ops())
}

func TestWriter_FaultsLeaveNoVisibleSegment(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		fault   fs.Fault
	}{
		{"create ids", IDsFileName, fs.Fault{FailOnOpen: true}},
		{"write ids", IDsFileName, fs.Fault{FailOnWrite: true}},
		{"short vectors", VectorsFileName, fs.Fault{FailAfterBytes: 10}},
		{"create meta", MetaFileName, fs.Fault{FailOnOpen: true}},
		{"sync ids", IDsFileName, fs.Fault{FailOnSync: true}},
		{"sync vectors", VectorsFileName, fs.Fault{FailOnSync: true}},
		{"sync meta", MetaFileName, fs.Fault{FailOnSync: true}},
		{"close meta", MetaFileName, fs.Fault{FailOnClose: true}},
		{"rename", "*" + TmpSuffix, fs.Fault{FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule(tt.pattern, tt.fault)

			w := newTestWriter(t, root, WithFileSystem(ffs), WithName("faulty"))
			path, err := w.Commit()
			require.ErrorIs(t, err, ErrIO)
			assert.ErrorIs(t, err, fs.ErrInjected)
			assert.Empty(t, path)

			assert.NoDirExists(t, filepath.Join(root, "faulty"))
			assert.DirExists(t, filepath.Join(root, "faulty"+TmpSuffix))

			names, err := List(root)
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestWriter_RootSyncFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "segments")
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("segments", fs.Fault{FailOnSync: true})

	w := newTestWriter(t, root, WithFileSystem(ffs), WithName("visible"))
	path, err := w.Commit()
	require.ErrorIs(t, err, ErrIO)
	require.Equal(t, filepath.Join(root, "visible"), path)

	r, err := Open(path)
	require.NoError(t, err)
	idx, err := r.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
}

func TestFlusher(t *testing.T) {
	root := t.TempDir()
	src, err := index.New(2, distance.Cosine, []uint64{1, 2, 3}, [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}})
	require.NoError(t, err)

	f := NewFlusher(root)
	assert.Equal(t, root, f.Root())

	p1, err := f.Flush(t.Context(), src)
	require.NoError(t, err)
	p2, err := f.Flush(t.Context(), src)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	r, err := Open(p1)
	require.NoError(t, err)
	idx, err := r.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, distance.Cosine, idx.Metric())

	res, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, uint64(1), res[0].ID)
	assert.Equal(t, uint64(3), res[1].ID)
}
