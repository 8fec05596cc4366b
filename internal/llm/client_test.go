package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/cchooks/internal/config"
)

func TestOpenRouterClient_Prompt(t *testing.T) {
	t.Run("returns error without API key", func(t *testing.T) {
		client := NewOpenRouterClient(config.ProviderConfig{})

		_, err := client.Prompt(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})

	t.Run("successful prompt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, OpenRouterReferer, r.Header.Get("HTTP-Referer"))
			assert.Equal(t, OpenRouterTitle, r.Header.Get("X-Title"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test/model", req.Model)
			assert.Equal(t, 100, req.MaxTokens)
			assert.InDelta(t, 0.7, req.Temperature, 1e-9)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "say hi", req.Messages[0].Content)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "  hi there \n"}}]}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(config.ProviderConfig{APIKey: "or-key", Model: "test/model", BaseURL: server.URL})

		out, err := client.Prompt(context.Background(), "say hi")
		require.NoError(t, err)
		assert.Equal(t, "hi there", out)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": "rate limited"}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(config.ProviderConfig{APIKey: "or-key", BaseURL: server.URL})

		_, err := client.Prompt(context.Background(), "x")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "openrouter", apiErr.Provider)
		assert.Contains(t, apiErr.Body, "rate limited")
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(config.ProviderConfig{APIKey: "or-key", BaseURL: server.URL})

		_, err := client.Prompt(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(config.ProviderConfig{APIKey: "or-key", BaseURL: server.URL})

		_, err := client.Prompt(context.Background(), "x")
		assert.Error(t, err)
	})
}

func TestOpenRouterClient_Defaults(t *testing.T) {
	client := NewOpenRouterClient(config.ProviderConfig{APIKey: "k"})

	assert.Equal(t, "openrouter", client.Name())
	assert.Equal(t, config.DefaultOpenRouterModel, client.Model())
	assert.Equal(t, OpenRouterBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestAnthropicClient_Prompt(t *testing.T) {
	t.Run("returns error without API key", func(t *testing.T) {
		client := NewAnthropicClient(config.ProviderConfig{APIKey: "   "})

		_, err := client.Prompt(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})

	t.Run("successful prompt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
			assert.Equal(t, AnthropicAPIVersion, r.Header.Get("anthropic-version"))

			var req messagesRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, config.DefaultAnthropicModel, req.Model)
			assert.Equal(t, 100, req.MaxTokens)

			_, _ = w.Write([]byte(`{"content": [{"type": "thinking", "text": "hmm"}, {"type": "text", "text": " Reads a file "}]}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(config.ProviderConfig{APIKey: " sk-ant ", BaseURL: server.URL})

		out, err := client.Prompt(context.Background(), "summarize")
		require.NoError(t, err)
		assert.Equal(t, "Reads a file", out)
	})

	t.Run("error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type": "error"}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(config.ProviderConfig{APIKey: "bad", BaseURL: server.URL})

		_, err := client.Prompt(context.Background(), "x")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, err.Error(), "anthropic API error (status 401)")
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content": []}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(config.ProviderConfig{APIKey: "k", BaseURL: server.URL})

		_, err := client.Prompt(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := NewAnthropicClient(config.ProviderConfig{APIKey: "k", BaseURL: url})

		_, err := client.Prompt(context.Background(), "x")
		assert.Error(t, err)
	})
}
