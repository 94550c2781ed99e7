// Package vector provides flat L2 vector indexes addressed by insertion position.
package vector

import "context"

// NoMatch is the position reported for a neighbour slot with no vector behind it,
// as FAISS does when k exceeds the number of stored vectors.
const NoMatch int64 = -1

// VectorIndex stores vectors in insertion order and answers k-nearest-neighbour
// queries by squared Euclidean distance. Vector i is the i-th vector ever added.
type VectorIndex interface {
	Add(ctx context.Context, vectors [][]float32) error
	// Search returns up to k neighbours ordered by ascending distance. Slots
	// that could not be filled may carry Position == NoMatch.
	Search(ctx context.Context, query []float32, k int) ([]Neighbor, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Neighbor is a single search hit.
type Neighbor struct {
	Position int64
	Distance float32 // squared L2 distance; lower is closer
}
