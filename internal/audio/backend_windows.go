//go:build windows

package audio

import (
	"context"
	"fmt"
	"strings"
)

type soundPlayerBackend struct{}

func newPlatformBackend() Backend { return soundPlayerBackend{} }

func (soundPlayerBackend) Play(ctx context.Context, path string) error {
	quoted := strings.ReplaceAll(path, "'", "''")
	script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", quoted)
	return runCommand(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
}
