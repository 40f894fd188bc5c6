// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	embedcache "github.com/custodia-labs/thorr/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/thorr/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/thorr/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/thorr/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/thorr/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/thorr/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// settingsHint is appended to provider errors.
const settingsHint = "Run 'thorr settings' to fix"

// InitResult holds the model services shared by every pipeline stage.
type InitResult struct {
	// EmbeddingService embeds table passages and questions.
	EmbeddingService driven.EmbeddingService

	// ColumnEmbedder embeds column passages; a caching decorator over
	// EmbeddingService when caching is enabled.
	ColumnEmbedder driven.EmbeddingService

	// LLMService serves classification, SQL generation and replies.
	LLMService driven.LLMService
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	// The column embedder wraps the embedding service and closes it.
	switch {
	case r.ColumnEmbedder != nil:
		r.ColumnEmbedder.Close()
	case r.EmbeddingService != nil:
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates, validates and decorates the embedding and LLM services.
// Both providers are required; an unconfigured one fails with
// domain.ErrEmbeddingUnavailable or domain.ErrLLMUnavailable.
func Init(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	embed, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embed == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured. %s",
			domain.ErrEmbeddingUnavailable, settingsHint)
	}

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		embed.Close()
		return nil, err
	}
	if llm == nil {
		embed.Close()
		return nil, fmt.Errorf("%w: no LLM provider configured. %s", domain.ErrLLMUnavailable, settingsHint)
	}

	if rl := settings.RateLimit; rl.RequestsPerSecond > 0 {
		logger.Debug("Rate limiting providers to %.2f req/s (burst %d)", rl.RequestsPerSecond, rl.Burst)
		embed = NewRateLimitedEmbedding(embed, rl.RequestsPerSecond, rl.Burst)
		llm = NewRateLimitedLLM(llm, rl.RequestsPerSecond, rl.Burst)
	}

	result := &InitResult{EmbeddingService: embed, ColumnEmbedder: embed, LLMService: llm}
	if settings.Retrieval.CacheEmbeddings {
		result.ColumnEmbedder = embedcache.New(embed)
	}
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return nil, errors.New("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
