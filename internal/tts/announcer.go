package tts

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// FilePlayer plays a single audio file. audio.Player satisfies it.
type FilePlayer interface {
	PlayFile(ctx context.Context, path string) error
}

// AnnounceFormat is requested from every provider. WAV is the one format
// all playback backends decode (Windows SoundPlayer and aplay play nothing else).
const AnnounceFormat = "wav"

// Announcer speaks text by synthesizing it to a temp file and playing it.
type Announcer struct {
	provider Provider
	player   FilePlayer
	options  SynthesizeOptions
}

// NewAnnouncer creates an announcer for the given provider and player.
func NewAnnouncer(provider Provider, player FilePlayer, options SynthesizeOptions) *Announcer {
	if options.Format == "" {
		options.Format = AnnounceFormat
	}
	return &Announcer{provider: provider, player: player, options: options}
}

// Close releases the provider's connection, if it holds one.
func (a *Announcer) Close() error {
	if closer, ok := a.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Announce synthesizes text and plays it. The temp file is always removed.
func (a *Announcer) Announce(ctx context.Context, text string) error {
	stream, err := a.provider.Synthesize(ctx, text, a.options)
	if err != nil {
		return fmt.Errorf("%s: %w", a.provider.Name(), err)
	}
	defer func() { _ = stream.Close() }()

	f, err := os.CreateTemp("", "cchooks-tts-*."+a.options.Format)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Debug().Err(rmErr).Str("path", path).Msg("Failed to remove temp audio")
		}
	}()

	n, err := io.Copy(f, stream)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	log.Debug().
		Str("provider", a.provider.Name()).
		Int64("bytes", n).
		Msg("Synthesized announcement")

	return a.player.PlayFile(ctx, path)
}
