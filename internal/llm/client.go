// Package llm sends single-shot prompts to hosted chat-completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Request limits shared by every provider.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxTokens   = 100
	DefaultTemperature = 0.7
)

var (
	// ErrNoAPIKey means the provider has no credentials configured.
	ErrNoAPIKey = errors.New("API key not configured")
	// ErrEmptyResponse means the API answered without any text.
	ErrEmptyResponse = errors.New("empty response")
)

// Client sends a prompt and returns the first completion's text.
type Client interface {
	Name() string
	Prompt(ctx context.Context, text string) (string, error)
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

const maxErrorBody = 512

// postJSON sends body as JSON and decodes a 2xx response into out.
func postJSON(ctx context.Context, httpClient *http.Client, provider, endpoint string, headers map[string]string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug().Str("provider", provider).Str("endpoint", endpoint).Msg("Sending LLM request")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
