package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/audio"
)

func handlePlay(ctx context.Context, c *cli.Command, d *deps) error {
	return playSound(ctx, d.player, c.StringSlice("file"))
}

// playSound maps player errors to exit codes: a busy player is success,
// a missing file or failed playback exits 1.
func playSound(ctx context.Context, player *audio.Player, files []string) error {
	if len(files) == 0 {
		files = []string{audio.DefaultSound}
	}

	played, err := player.Play(ctx, files...)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "Audio played successfully: %s\n", played)
		return nil
	case errors.Is(err, audio.ErrBusy):
		log.Info().Msg("Audio already playing, skipping...")
		return nil
	case errors.Is(err, audio.ErrNotFound):
		return cli.Exit(fmt.Sprintf("Audio file not found: %v", err), 1)
	default:
		return cli.Exit(fmt.Sprintf("Failed to play audio: %v", err), 1)
	}
}
