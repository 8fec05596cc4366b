package tts

import (
	"context"
	"fmt"
	"strings"

	"github.com/daikw/cchooks/internal/config"
)

// Names lists the supported provider names.
func Names() []string {
	return []string{"openai", "polly", "gcp"}
}

// New builds the provider named in cfg along with the voice it should use.
func New(ctx context.Context, cfg config.TTSConfig) (Provider, string, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey), cfg.OpenAIVoice, nil
	case "polly", "aws":
		p, err := NewPollyProvider(ctx, cfg.PollyRegion)
		if err != nil {
			return nil, "", err
		}
		return p, cfg.PollyVoice, nil
	case "gcp", "google":
		p, err := NewGCPProvider(ctx, cfg.GCPVoice)
		if err != nil {
			return nil, "", err
		}
		return p, cfg.GCPVoice, nil
	default:
		return nil, "", fmt.Errorf("unsupported TTS provider: %s (supported: %s)", cfg.Provider, strings.Join(Names(), ", "))
	}
}
