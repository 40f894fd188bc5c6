package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (r echoResponse) APIError() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var in echoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(echoResponse{Text: in.Text + "!"})
	}))
	defer server.Close()

	client := New("test", server.URL+"/", time.Second, Bearer("k"))
	assert.Equal(t, server.URL, client.BaseURL())
	assert.Equal(t, time.Second, client.Timeout())
	assert.Equal(t, "test", client.Name())

	var out echoResponse
	require.NoError(t, client.Post(context.Background(), "/v1/echo", echoRequest{Text: "hi"}, &out))
	assert.Equal(t, "hi!", out.Text)
}

func TestClient_Post_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		contains    string
		rateLimited bool
	}{
		{"api error", http.StatusBadRequest, `{"error":{"message":"bad model"}}`, "test error: bad model", false},
		{"api error on 200", http.StatusOK, `{"error":{"message":"quota"}}`, "test error: quota", false},
		{"rate limited", http.StatusTooManyRequests, `slow down`, "test error (status 429): slow down", true},
		{"plain status", http.StatusInternalServerError, "model not loaded\n", "test error (status 500): model not loaded", false},
		{"html gateway", http.StatusBadGateway, `<html>`, "status 502", false},
		{"bad json on 200", http.StatusOK, `{`, "decode response", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out echoResponse
			err := New("test", server.URL, time.Second, nil).Post(context.Background(), "/", echoRequest{}, &out)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.rateLimited, errors.Is(err, domain.ErrRateLimited))
		})
	}
}

func TestClient_Post_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	var out echoResponse
	err := New("test", server.URL, time.Second, nil).Post(context.Background(), "/", echoRequest{}, &out)
	assert.ErrorContains(t, err, "send request")
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.Header.Get("X-Api-Key") != "good" {
			http.Error(w, "invalid x-api-key", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	header := func(key string) http.Header {
		h := http.Header{}
		h.Set("x-api-key", key)
		return h
	}

	assert.NoError(t, New("test", server.URL, time.Second, header("good")).Ping(context.Background(), "/models"))

	err := New("test", server.URL, time.Second, header("bad")).Ping(context.Background(), "/models")
	assert.EqualError(t, err, "test: API returned status 401: invalid x-api-key")
}
