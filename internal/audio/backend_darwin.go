//go:build darwin

package audio

import "context"

type afplayBackend struct{}

func newPlatformBackend() Backend { return afplayBackend{} }

func (afplayBackend) Play(ctx context.Context, path string) error {
	return runCommand(ctx, "afplay", path)
}
