package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

func newTestServer(t *testing.T, got *messagesRequest, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		_, _ = w.Write([]byte(reply))
	}))
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestLLMService_Complete(t *testing.T) {
	var got messagesRequest
	server := newTestServer(t, &got, `{"content":[{"type":"text","text":"Olá!"},{"type":"text","text":" Sou a Thori."}]}`)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := svc.Complete(context.Background(), "persona", "oi", driven.GenerateOptions{Temperature: 0.7})
	require.NoError(t, err)

	assert.Equal(t, "Olá! Sou a Thori.", reply)
	assert.Equal(t, "persona", got.System)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, []messagesMessage{{Role: "user", Content: "oi"}}, got.Messages)
}

func TestLLMService_Complete_JSONPrefill(t *testing.T) {
	var got messagesRequest
	server := newTestServer(t, &got, `{"content":[{"type":"text","text":"\"intent\": \"DATA_ASSISTANCE\"}"}]}`)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := svc.Complete(context.Background(), "classify", "q", driven.GenerateOptions{JSON: true, MaxTokens: 64})
	require.NoError(t, err)

	assert.Equal(t, `{"intent": "DATA_ASSISTANCE"}`, reply)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, messagesMessage{Role: "assistant", Content: "{"}, got.Messages[1])
}

func TestLLMService_Chat_LiftsSystemMessages(t *testing.T) {
	var got messagesRequest
	server := newTestServer(t, &got, `{"content":[{"type":"text","text":"ok"}]}`)
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "a"},
		{Role: driven.RoleUser, Content: "hello"},
		{Role: driven.RoleSystem, Content: "b"},
	}, driven.ChatOptions{MaxTokens: 10})
	require.NoError(t, err)

	assert.Equal(t, "a\n\nb", got.System)
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, 10, got.MaxTokens)
}

func TestLLMService_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		contains    string
		rateLimited bool
	}{
		{"api error", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"bad model"}}`, "bad model", false},
		{"overloaded", http.StatusTooManyRequests, `{"error":{"message":"overloaded"}}`, "overloaded", true},
		{"empty content", http.StatusOK, `{"content":[]}`, "no response content", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Complete(context.Background(), "s", "u", driven.GenerateOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.rateLimited, errors.Is(err, domain.ErrRateLimited))
		})
	}
}
