package driven

import (
	"context"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// VectorIndex provides exact nearest-neighbour search over a fixed set of vectors.
// An index is built once and never mutated; it is safe for concurrent searches.
type VectorIndex interface {
	// Search finds the k nearest vectors to query under Euclidean distance,
	// nearest first. When k exceeds Len, every vector is returned.
	Search(ctx context.Context, query []float32, k int) ([]domain.VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector size the index was built with.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorIndexBuilder builds an index over vectors, tagging each with the
// reference at the same position in refs.
type VectorIndexBuilder func(refs []string, vectors [][]float32) (VectorIndex, error)
