//go:build !darwin && !linux && !windows

package audio

import "context"

type unsupportedBackend struct{}

func newPlatformBackend() Backend { return unsupportedBackend{} }

func (unsupportedBackend) Play(context.Context, string) error {
	return ErrUnsupported
}
