// Package ollama provides an LLM service adapter using Ollama's chat endpoint.
package ollama

import (
	"cmp"
	"context"
	"time"

	"github.com/custodia-labs/thorr/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text through /api/chat with streaming off.
type LLMService struct {
	api   *httpapi.Client
	model string
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

func (r chatResponse) APIError() string { return r.Error }

// NewLLMService creates an Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	return &LLMService{
		api:   httpapi.New("ollama", cmp.Or(cfg.BaseURL, DefaultBaseURL), cmp.Or(cfg.Timeout, DefaultLLMTimeout), nil),
		model: cmp.Or(cfg.Model, DefaultLLMModel),
	}
}

// Complete sends a system instruction and one user message. opts.JSON sets
// format=json, which constrains the model to a JSON object.
func (s *LLMService) Complete(ctx context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: driven.RoleSystem, Content: system},
			{Role: driven.RoleUser, Content: user},
		},
		Options: &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature, Stop: opts.StopWords},
	}
	if opts.JSON {
		req.Format = "json"
	}
	return s.chat(ctx, req)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	msgs := make([]chatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	return s.chat(ctx, chatRequest{
		Model:    s.model,
		Messages: msgs,
		Options:  &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	})
}

func (s *LLMService) chat(ctx context.Context, req chatRequest) (string, error) {
	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// ModelName returns the chat model.
func (s *LLMService) ModelName() string { return s.model }

// Ping lists local models, which checks the daemon is up.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/api/tags")
}

// Close is a no-op.
func (s *LLMService) Close() error { return nil }
