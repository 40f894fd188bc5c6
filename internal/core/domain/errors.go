package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Intent classification and SQL generation are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Table and column retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates no vector index has been built.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmptyCorpus indicates an index was requested over zero passages.
	// An empty index cannot be queried meaningfully, so building one fails.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrDimensionMismatch indicates vectors of different lengths were mixed.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUnsafeStatement indicates generated SQL was refused before execution.
	ErrUnsafeStatement = errors.New("unsafe statement")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ProviderError wraps a failure returned by an embedding or generative model
// provider. Op names the pipeline step that made the call.
type ProviderError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Op + ": provider error"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a ProviderError for op.
func NewProviderError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Err: err}
}
