package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
)

func newLimiter(rps float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// RateLimitedLLM throttles model requests with a token bucket.
type RateLimitedLLM struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps inner, allowing rps requests per second with the given burst.
func NewRateLimitedLLM(inner driven.LLMService, rps float64, burst int) *RateLimitedLLM {
	return &RateLimitedLLM{inner: inner, limiter: newLimiter(rps, burst)}
}

// Complete waits for a token and forwards the request.
func (l *RateLimitedLLM) Complete(ctx context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	if err := wait(ctx, l.limiter); err != nil {
		return "", err
	}
	return l.inner.Complete(ctx, system, user, opts)
}

// Chat waits for a token and forwards the request.
func (l *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := wait(ctx, l.limiter); err != nil {
		return "", err
	}
	return l.inner.Chat(ctx, messages, opts)
}

// ModelName returns the wrapped model name.
func (l *RateLimitedLLM) ModelName() string { return l.inner.ModelName() }

// Ping is not throttled.
func (l *RateLimitedLLM) Ping(ctx context.Context) error { return l.inner.Ping(ctx) }

// Close closes the wrapped service.
func (l *RateLimitedLLM) Close() error { return l.inner.Close() }

// RateLimitedEmbedding throttles embedding requests with a token bucket.
// A batch costs one token.
type RateLimitedEmbedding struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps inner, allowing rps requests per second with the given burst.
func NewRateLimitedEmbedding(inner driven.EmbeddingService, rps float64, burst int) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{inner: inner, limiter: newLimiter(rps, burst)}
}

// Embed waits for a token and forwards the request.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := wait(ctx, e.limiter); err != nil {
		return nil, err
	}
	return e.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token and forwards the request.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := wait(ctx, e.limiter); err != nil {
		return nil, err
	}
	return e.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped vector size.
func (e *RateLimitedEmbedding) Dimensions() int { return e.inner.Dimensions() }

// ModelName returns the wrapped model name.
func (e *RateLimitedEmbedding) ModelName() string { return e.inner.ModelName() }

// Ping is not throttled.
func (e *RateLimitedEmbedding) Ping(ctx context.Context) error { return e.inner.Ping(ctx) }

// Close closes the wrapped service.
func (e *RateLimitedEmbedding) Close() error { return e.inner.Close() }
