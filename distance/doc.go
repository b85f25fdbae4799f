// Package distance provides the similarity metrics used to rank vectors.
//
// Every metric returns a score where higher means more similar:
//
//   - Euclidean: negative Euclidean distance
//   - Cosine: cosine similarity, 0 when either vector has zero norm
//   - DotProduct: inner product
//
// # Usage
//
//	score, err := distance.Cosine.Score(a, b)
//	m, err := distance.ParseMetric("Euclidean")
package distance
