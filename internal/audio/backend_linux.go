//go:build linux

package audio

import (
	"context"
	"fmt"
)

type linuxBackend struct{}

func newPlatformBackend() Backend { return linuxBackend{} }

// Play uses the first available of PulseAudio, ALSA or ffmpeg.
func (linuxBackend) Play(ctx context.Context, path string) error {
	switch {
	case isCommandAvailable("paplay"):
		return runCommand(ctx, "paplay", path)
	case isCommandAvailable("aplay"):
		return runCommand(ctx, "aplay", "-q", path)
	case isCommandAvailable("ffplay"):
		return runCommand(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path)
	default:
		return fmt.Errorf("%w: install paplay, aplay or ffplay", ErrUnsupported)
	}
}
