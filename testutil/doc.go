// Package testutil provides testing utilities for nvdb.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors and computing a
// reference ranking to check index search results against.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 128)  // uniform [0, 1)
//	unit := rng.UnitVectors(1000, 128)     // L2-normalized
//
// # Reference Ranking
//
//	want, err := testutil.ExactTopK(distance.Cosine, ids, vecs, query, k)
package testutil
