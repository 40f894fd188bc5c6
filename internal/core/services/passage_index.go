package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Asymmetric framing for query/passage embedding models (e5 family).
// Both sides must carry their prefix or retrieval quality silently degrades.
const (
	PassagePrefix = "passage: "
	QueryPrefix   = "query: "
)

// PassageIndex is a vector index over a fixed set of passages.
// It is immutable once built and safe for concurrent searches.
type PassageIndex struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// BuildPassageIndex embeds every passage with PassagePrefix and builds an
// index keyed by each passage's reference. It fails with domain.ErrEmptyCorpus
// when passages is empty.
func BuildPassageIndex(
	ctx context.Context,
	embedder driven.EmbeddingService,
	build driven.VectorIndexBuilder,
	passages []domain.Passage,
) (*PassageIndex, error) {
	if len(passages) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(passages))
	refs := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = PassagePrefix + p.Text
		refs[i] = p.Ref.Key()
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, domain.NewProviderError("embed passages", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed passages: got %d vectors for %d passages: %w",
			len(vectors), len(texts), domain.ErrInvalidInput)
	}

	index, err := build(refs, vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	return &PassageIndex{embedder: embedder, index: index}, nil
}

// Search normalizes text, embeds it with QueryPrefix and returns the k
// nearest passage references.
func (p *PassageIndex) Search(ctx context.Context, text string, k int) ([]domain.VectorHit, error) {
	vector, err := p.embedder.Embed(ctx, QueryPrefix+Normalize(text))
	if err != nil {
		return nil, domain.NewProviderError("embed query", err)
	}
	hits, err := p.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}

// Len returns the number of indexed passages.
func (p *PassageIndex) Len() int {
	return p.index.Len()
}

// Close releases the underlying index.
func (p *PassageIndex) Close() error {
	return p.index.Close()
}
