package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/daikw/cchooks/internal/config"
)

const (
	OpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	openRouterEndpoint = "/chat/completions"

	// Attribution headers OpenRouter asks clients to send.
	OpenRouterReferer = "https://github.com/daikw/cchooks"
	OpenRouterTitle   = "Claude Code Multi Agent Watcher"
)

// OpenRouterClient calls the OpenRouter chat completions API.
type OpenRouterClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterClient creates a client from provider settings.
func NewOpenRouterClient(cfg config.ProviderConfig) *OpenRouterClient {
	c := &OpenRouterClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(),
	}
	if c.model == "" {
		c.model = config.DefaultOpenRouterModel
	}
	if c.baseURL == "" {
		c.baseURL = OpenRouterBaseURL
	}
	return c
}

// Name returns the provider name
func (c *OpenRouterClient) Name() string {
	return "openrouter"
}

// Model returns the configured model id.
func (c *OpenRouterClient) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Prompt sends text as a single user message.
func (c *OpenRouterClient) Prompt(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: text}},
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"HTTP-Referer":  OpenRouterReferer,
		"X-Title":       OpenRouterTitle,
	}

	var resp chatResponse
	if err := postJSON(ctx, c.httpClient, c.Name(), c.baseURL+openRouterEndpoint, headers, body, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
