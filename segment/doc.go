// Package segment persists index batches as immutable on-disk segments.
//
// A segment is a directory under a segments root holding three files:
//
//	<root>/<name>/ids.bin      uint64 little-endian, one per row
//	<root>/<name>/vectors.f32  float32 little-endian, row-major, count*dim values
//	<root>/<name>/meta.json    {"count":N,"dim":D,"metric":"Euclidean"}
//
// # Commit protocol
//
// [Writer.Commit] builds the segment under <root>/<name>.tmp, writes the ids,
// vectors and metadata files, fsyncs each of them, renames the directory to
// its final name and finally fsyncs the root. The rename is the commit point:
// readers never observe a .tmp directory, so a failure before it leaves only
// an orphaned working directory behind.
//
// A crash after the rename but before the root fsync may lose the rename on
// filesystems that do not order directory updates. Nothing reconciles that
// case on restart; orphaned .tmp directories are also left in place.
//
// # Reading
//
//	r, err := segment.Open(dir)
//	idx, err := r.LoadIndex()
//
// Committed segments are never modified and may be shared by concurrent
// readers without locking.
package segment
