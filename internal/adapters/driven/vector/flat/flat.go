// Package flat provides an exact, in-memory nearest-neighbour index.
// It implements the driven.VectorIndex interface with a brute-force scan
// under Euclidean distance, so results are reproducible for a given set
// of embeddings.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var (
	_ driven.VectorIndex        = (*Index)(nil)
	_ driven.VectorIndexBuilder = Build
)

var errClosed = errors.New("flat: index is closed")

// Index is an immutable dense matrix of vectors with a reference per row.
type Index struct {
	mu        sync.RWMutex
	refs      []string
	data      []float32 // row-major, len(refs) * dimension
	dimension int
	closed    bool
}

// Build copies vectors into a new index. refs[i] tags vectors[i].
// It fails on zero vectors, ragged dimensions or a ref/vector count mismatch.
func Build(refs []string, vectors [][]float32) (driven.VectorIndex, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("flat: %w", domain.ErrEmptyCorpus)
	}
	if len(refs) != len(vectors) {
		return nil, fmt.Errorf("flat: %d refs for %d vectors: %w", len(refs), len(vectors), domain.ErrInvalidInput)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("flat: zero-length vector: %w", domain.ErrInvalidInput)
	}

	data := make([]float32, 0, len(vectors)*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("flat: vector %d has %d dimensions, want %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
		data = append(data, v...)
	}

	return &Index{
		refs:      append([]string(nil), refs...),
		data:      data,
		dimension: dim,
	}, nil
}

// Search returns the k nearest rows to query, nearest first.
// Equal distances keep insertion order.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, errClosed
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("flat: query has %d dimensions, want %d: %w",
			len(query), idx.dimension, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]domain.VectorHit, len(idx.refs))
	for i := range idx.refs {
		row := idx.data[i*idx.dimension : (i+1)*idx.dimension]
		hits[i] = domain.VectorHit{Ref: idx.refs[i], Distance: l2(query, row)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.refs)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Close releases the vectors. Searches after Close fail.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.data = nil
	return nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
