// Package cache provides an embedding service decorator that memoises
// vectors by model and text.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Key hashes the model name and text into a cache key.
func Key(model, text string) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write([]byte(model)); err != nil {
		return 0, err
	}
	if _, err := h.Write([]byte{0}); err != nil {
		return 0, err
	}
	if _, err := h.Write([]byte(text)); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int
	Misses int
}

// EmbeddingService wraps another embedding service and remembers the
// vectors returned by EmbedBatch. Cached vectors are shared; callers must not modify them.
type EmbeddingService struct {
	inner driven.EmbeddingService

	mu      sync.RWMutex
	vectors map[uint64][]float32
	stats   Stats
}

// New wraps inner with an in-memory cache.
func New(inner driven.EmbeddingService) *EmbeddingService {
	return &EmbeddingService{
		inner:   inner,
		vectors: make(map[uint64][]float32),
	}
}

// Embed returns the cached vector for text or asks the wrapped service.
// Single texts are query-time lookups and are not stored, so the cache only
// ever holds what EmbedBatch indexed.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key, err := Key(s.inner.ModelName(), text)
	if err != nil {
		return nil, fmt.Errorf("cache key: %w", err)
	}
	if vec, ok := s.lookup(key); ok {
		return vec, nil
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch serves cached texts from memory and embeds the rest in one
// call to the wrapped service, preserving input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	model := s.inner.ModelName()
	out := make([][]float32, len(texts))
	keys := make([]uint64, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		key, err := Key(model, text)
		if err != nil {
			return nil, fmt.Errorf("cache key: %w", err)
		}
		keys[i] = key
		if vec, ok := s.lookup(key); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("cache: got %d embeddings for %d inputs", len(vecs), len(missing))
	}
	for j, i := range missingIdx {
		out[i] = vecs[j]
		s.store(keys[i], vecs[j])
	}
	return out, nil
}

func (s *EmbeddingService) lookup(key uint64) ([]float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vec, ok := s.vectors[key]
	if ok {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
	return vec, ok
}

func (s *EmbeddingService) store(key uint64, vec []float32) {
	s.mu.Lock()
	s.vectors[key] = vec
	s.mu.Unlock()
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Stats returns hit and miss counts since creation.
func (s *EmbeddingService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close drops cached vectors and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	s.vectors = make(map[uint64][]float32)
	s.mu.Unlock()
	return s.inner.Close()
}
