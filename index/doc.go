// Package index provides the in-memory brute-force vector index.
//
// An [Index] holds id/vector pairs in insertion order and answers top-k
// queries by scoring every stored vector with the configured
// [distance.Metric]. Persistence is optional and injected:
//
//   - [Stager]: mirrors every insert into an external staging store
//   - [Flusher]: persists the full contents as an immutable segment once the
//     estimated footprint exceeds the flush threshold
//
// # Usage
//
//	idx, err := index.New(3, distance.Cosine, nil, nil,
//	    index.WithStager(store),
//	    index.WithFlusher(segment.NewFlusher("./segments")),
//	)
//	err = idx.Insert(ctx, 42, []float32{0.1, 0.2, 0.3})
//	matches, err := idx.Search([]float32{0.1, 0.2, 0.3}, 10)
//
// # Concurrency
//
// Index performs no internal locking. Callers must serialize Insert, Flush
// and Reset. Concurrent Search calls are safe while no mutation is in flight.
package index
