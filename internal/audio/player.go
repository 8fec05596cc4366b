// Package audio plays notification sounds through the platform's audio tools.
//
// Playback is guarded by a lock file shared by all hook processes. A lock
// younger than the stale window means another hook is playing and the call
// is skipped; an older lock is assumed abandoned and reclaimed.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// DefaultStaleAfter is how long a lock may live before it is reclaimed.
const DefaultStaleAfter = 10 * time.Second

// DefaultSound is played when no candidates are given.
const DefaultSound = "stop.wav"

var (
	ErrBusy        = errors.New("another playback is in progress")
	ErrNotFound    = errors.New("audio file not found")
	ErrPlayback    = errors.New("audio playback failed")
	ErrUnsupported = errors.New("audio playback is not supported on this platform")
)

// Backend plays a single audio file and blocks until it finishes.
type Backend interface {
	Play(ctx context.Context, path string) error
}

// Player plays sounds under a stale-aware lock.
type Player struct {
	soundsDir  string
	lockPath   string
	staleAfter time.Duration
	backend    Backend
	now        func() time.Time
	pick       func(n int) int
}

// Option configures a Player.
type Option func(*Player)

// WithBackend replaces the platform backend.
func WithBackend(b Backend) Option {
	return func(p *Player) { p.backend = b }
}

// WithStaleAfter sets the lock staleness window.
func WithStaleAfter(d time.Duration) Option {
	return func(p *Player) { p.staleAfter = d }
}

// WithClock sets the time source used for the staleness check.
func WithClock(now func() time.Time) Option {
	return func(p *Player) { p.now = now }
}

// WithPicker sets the function choosing among n candidates.
func WithPicker(pick func(n int) int) Option {
	return func(p *Player) { p.pick = pick }
}

// NewPlayer creates a player resolving relative names against soundsDir and
// guarding playback with the lock file at lockPath.
func NewPlayer(soundsDir, lockPath string, opts ...Option) *Player {
	p := &Player{
		soundsDir:  soundsDir,
		lockPath:   lockPath,
		staleAfter: DefaultStaleAfter,
		backend:    newPlatformBackend(),
		now:        time.Now,
		pick:       rand.Intn,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play picks one of the candidates at random and plays it. Candidates are
// file names or doublestar patterns relative to the sounds directory.
// It returns the path that was played.
func (p *Player) Play(ctx context.Context, candidates ...string) (string, error) {
	var played string
	err := p.withLock(func() error {
		path, err := p.choose(candidates)
		if err != nil {
			return err
		}
		played = path
		return p.play(ctx, path)
	})
	return played, err
}

// PlayFile plays a specific file under the same lock.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	return p.withLock(func() error {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return p.play(ctx, path)
	})
}

func (p *Player) withLock(fn func() error) error {
	if err := p.acquire(); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(p.lockPath); err != nil && !os.IsNotExist(err) {
			log.Debug().Err(err).Str("lock", p.lockPath).Msg("Failed to remove audio lock")
		}
	}()
	return fn()
}

func (p *Player) acquire() error {
	info, err := os.Stat(p.lockPath)
	if err == nil {
		age := p.now().Sub(info.ModTime())
		if age < p.staleAfter {
			log.Debug().Dur("age", age).Msg("Audio lock held, skipping playback")
			return ErrBusy
		}
		log.Debug().Dur("age", age).Msg("Removing stale audio lock")
		if err := os.Remove(p.lockPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(p.lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	if err := os.WriteFile(p.lockPath, nil, 0644); err != nil {
		return fmt.Errorf("failed to create lock: %w", err)
	}
	return nil
}

func (p *Player) choose(candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = []string{DefaultSound}
	}

	var names []string
	for _, c := range candidates {
		names = append(names, p.expand(c)...)
	}

	chosen := names[p.pick(len(names))]
	path := chosen
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.soundsDir, chosen)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return path, nil
}

// expand resolves a pattern inside the sounds directory. A name without
// matches is returned as is so the caller reports it as missing.
func (p *Player) expand(pattern string) []string {
	if filepath.IsAbs(pattern) || !hasMeta(pattern) {
		return []string{pattern}
	}

	matches, err := doublestar.Glob(os.DirFS(p.soundsDir), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil || len(matches) == 0 {
		return []string{pattern}
	}
	sort.Strings(matches)

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.FromSlash(m)
	}
	return names
}

func (p *Player) play(ctx context.Context, path string) error {
	log.Debug().Str("file", path).Msg("Playing audio")
	if err := p.backend.Play(ctx, path); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// runCommand runs a player command and folds its stderr into the error.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func isCommandAvailable(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
