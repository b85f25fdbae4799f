// Package nvdb is the persistence and retrieval core of a small vector
// search engine.
//
// Vectors live in an in-memory brute-force [index.Index]. Every insert is
// mirrored into a staging store, and once the resident batch grows past a
// byte threshold it is committed as an immutable on-disk segment using a
// crash-consistent write, fsync and atomic rename protocol.
//
// # Quick Start
//
//	cfg := nvdb.DefaultConfig()
//	cfg.Dimension = 3
//	cfg.Metric = distance.Cosine
//
//	db, err := nvdb.Open(ctx, cfg)
//	defer db.Close()
//
//	err = db.Insert(ctx, 1, []float32{0.1, 0.2, 0.3})
//	matches, err := db.Search(ctx, []float32{0.1, 0.2, 0.3}, 10)
//
// # Segments
//
// A flush writes <root>/<uuid>/{ids.bin, vectors.f32, meta.json}. Segments
// are never modified once visible and can be loaded back with
// [DB.LoadSegment] or [segment.Open].
//
// # Scoring
//
// All metrics return higher scores for more similar vectors. Euclidean is
// the negative distance, Cosine is 0 for zero-norm vectors, DotProduct is the
// raw inner product. Ties keep insertion order; NaN scores fail the search
// with [ErrUnsupportedNumericState].
//
// # Configuration
//
// [Config] can be built in code or read from YAML with [LoadConfig]:
//
//	segments_root: /var/lib/nvdb/segments
//	staging_path: /var/lib/nvdb/staging
//	dimension: 768
//	metric: Cosine
//	flush_threshold: 1073741824
package nvdb
