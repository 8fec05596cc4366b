package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/daikw/cchooks/internal/config"
)

const (
	AnthropicBaseURL    = "https://api.anthropic.com"
	AnthropicAPIVersion = "2023-06-01"
	anthropicEndpoint   = "/v1/messages"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicClient creates a client from provider settings.
func NewAnthropicClient(cfg config.ProviderConfig) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(),
	}
	if c.model == "" {
		c.model = config.DefaultAnthropicModel
	}
	if c.baseURL == "" {
		c.baseURL = AnthropicBaseURL
	}
	return c
}

// Name returns the provider name
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Model returns the configured model id.
func (c *AnthropicClient) Model() string {
	return c.model
}

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Prompt sends text as a single user message and returns the first text block.
func (c *AnthropicClient) Prompt(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body := messagesRequest{
		Model:       c.model,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Messages:    []chatMessage{{Role: "user", Content: text}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": AnthropicAPIVersion,
	}

	var resp messagesResponse
	if err := postJSON(ctx, c.httpClient, c.Name(), c.baseURL+anthropicEndpoint, headers, body, &resp); err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		if out := strings.TrimSpace(block.Text); out != "" {
			return out, nil
		}
		break
	}
	return "", ErrEmptyResponse
}
