// Package httpapi is the JSON-over-HTTP client shared by the model provider
// adapters. It owns request encoding, per-provider headers, status handling
// and the reachability check, so each adapter only maps its own wire types.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// maxPingBody caps how much of a failed ping response ends up in the error.
const maxPingBody = 1024

// APIError is implemented by response types whose body can carry a provider
// error message. A non-empty message fails the call regardless of status.
type APIError interface {
	APIError() string
}

// Client talks to one provider. Name prefixes every error it returns.
type Client struct {
	name    string
	baseURL string
	header  http.Header
	http    *http.Client
}

// New creates a client for baseURL. header is sent with every request and
// may be nil.
func New(name, baseURL string, timeout time.Duration, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  header,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name used in errors.
func (c *Client) Name() string { return c.name }

// BaseURL returns the provider base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// Post encodes in as JSON, posts it to path and decodes a 200 reply into out.
//
// A 429 wraps domain.ErrRateLimited. A body that decodes into an APIError
// with a message is reported as that message. Any other non-200 status is
// reported with the raw body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s error (status %d): read response: %w", c.name, resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s error (status %d): %s: %w", c.name, resp.StatusCode, body, domain.ErrRateLimited)
	}

	decodeErr := json.Unmarshal(body, out)
	if decodeErr == nil {
		if e, ok := out.(APIError); ok {
			if msg := e.APIError(); msg != "" {
				return fmt.Errorf("%s error: %s", c.name, msg)
			}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s error (status %d): %s", c.name, resp.StatusCode, body)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// Ping sends a GET to path and expects 200. It is used to validate
// connectivity and credentials without running inference.
func (c *Client) Ping(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create ping request: %w", c.name, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxPingBody))
		return fmt.Errorf("%s: API returned status %d: %s", c.name, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	for key, values := range c.header {
		req.Header[key] = values
	}
	return req, nil
}

// Bearer returns the Authorization header for a bearer token.
func Bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}
