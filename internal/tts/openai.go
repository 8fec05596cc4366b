package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenAITTSEndpoint = "/audio/speech"
)

var openAIVoices = []Voice{
	{ID: "alloy", Name: "Alloy", Language: "en", Gender: "neutral", Description: "Balanced, clear voice"},
	{ID: "echo", Name: "Echo", Language: "en", Gender: "male", Description: "Deep, resonant voice"},
	{ID: "fable", Name: "Fable", Language: "en", Gender: "neutral", Description: "Expressive, storytelling voice"},
	{ID: "onyx", Name: "Onyx", Language: "en", Gender: "male", Description: "Strong, authoritative voice"},
	{ID: "nova", Name: "Nova", Language: "en", Gender: "female", Description: "Bright, energetic voice"},
	{ID: "shimmer", Name: "Shimmer", Language: "en", Gender: "female", Description: "Warm, friendly voice"},
}

// OpenAIProvider speaks through the OpenAI audio API
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: OpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ListVoices returns the fixed OpenAI voice list.
func (p *OpenAIProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	return append([]Voice(nil), openAIVoices...), nil
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

// Synthesize generates audio from text using OpenAI Audio API
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrUnauthorized)
	}

	body := speechRequest{
		Model:          options.Model,
		Input:          text,
		Voice:          options.Voice,
		ResponseFormat: options.Format,
		Speed:          clampSpeed(options.Speed),
	}
	if body.Model == "" {
		body.Model = "tts-1"
	}
	if body.Voice == "" {
		body.Voice = "alloy"
	}
	if body.ResponseFormat == "" {
		body.ResponseFormat = "mp3"
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := p.baseURL + OpenAITTSEndpoint
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	log.Debug().
		Str("endpoint", endpoint).
		Str("voice", body.Voice).
		Str("model", body.Model).
		Msg("Making OpenAI TTS request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
		}
		return nil, fmt.Errorf("OpenAI API error: status %d, body: %s", resp.StatusCode, string(data))
	}

	return resp.Body, nil
}
