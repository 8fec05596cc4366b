// Package tts speaks completion messages through hosted text-to-speech APIs.
package tts

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrEmptyText is returned when there is nothing to speak.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrUnauthorized means the provider rejected the credentials.
	ErrUnauthorized = errors.New("text-to-speech credentials rejected")
)

// Provider defines the interface for TTS providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// ListVoices returns available voices for this provider
	ListVoices(ctx context.Context) ([]Voice, error)

	// Synthesize generates audio from text and returns an audio stream
	Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error)
}

// Voice represents a voice option
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender,omitempty"`
	Description string `json:"description,omitempty"`
}

// SynthesizeOptions contains options for text synthesis
type SynthesizeOptions struct {
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed,omitempty"`    // 0.25-4.0
	Format   string  `json:"format,omitempty"`   // mp3, ogg, wav
	Language string  `json:"language,omitempty"` // BCP-47 code
	Model    string  `json:"model,omitempty"`
	Engine   string  `json:"engine,omitempty"`
}

// clampSpeed keeps speed inside the range every provider accepts.
func clampSpeed(speed float64) float64 {
	switch {
	case speed <= 0:
		return 1.0
	case speed < 0.25:
		return 0.25
	case speed > 4.0:
		return 4.0
	default:
		return speed
	}
}
