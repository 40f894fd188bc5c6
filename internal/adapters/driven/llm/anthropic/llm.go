// Package anthropic provides an LLM service adapter using the Anthropic
// messages API.
package anthropic

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/thorr/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	defaultMaxTokens = 1024

	apiVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is required.
	APIKey string

	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text through /v1/messages.
type LLMService struct {
	api   *httpapi.Client
	model string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature"`
	StopSeqs    []string          `json:"stop_sequences,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (r messagesResponse) APIError() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message
}

// NewLLMService creates an Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}

	header := http.Header{}
	header.Set("x-api-key", cfg.APIKey)
	header.Set("anthropic-version", apiVersion)

	return &LLMService{
		api:   httpapi.New("anthropic", cmp.Or(cfg.BaseURL, DefaultBaseURL), cmp.Or(cfg.Timeout, DefaultTimeout), header),
		model: cmp.Or(cfg.Model, DefaultModel),
	}, nil
}

// Complete sends a system instruction and one user message.
// There is no JSON mode, so opts.JSON prefills the assistant turn with "{"
// and puts the brace back on the reply.
func (s *LLMService) Complete(ctx context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	msgs := []messagesMessage{{Role: driven.RoleUser, Content: user}}
	if opts.JSON {
		msgs = append(msgs, messagesMessage{Role: driven.RoleAssistant, Content: "{"})
	}

	reply, err := s.send(ctx, messagesRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		System:      system,
		Temperature: opts.Temperature,
		StopSeqs:    opts.StopWords,
	})
	if err != nil || !opts.JSON {
		return reply, err
	}
	return "{" + reply, nil
}

// Chat conducts a multi-turn conversation. System messages go to the
// request's system field, joined by a blank line.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	msgs := make([]messagesMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		msgs = append(msgs, messagesMessage{Role: m.Role, Content: m.Content})
	}

	return s.send(ctx, messagesRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		System:      strings.Join(system, "\n\n"),
		Temperature: opts.Temperature,
	})
}

func (s *LLMService) send(ctx context.Context, req messagesRequest) (string, error) {
	// max_tokens is mandatory here.
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	var resp messagesResponse
	if err := s.api.Post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic: no response content returned")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

// ModelName returns the model.
func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which validates the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/v1/models")
}

// Close is a no-op.
func (s *LLMService) Close() error { return nil }
