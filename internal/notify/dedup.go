package notify

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/cchooks/internal/hook"
)

const (
	dedupDir = "cchooks-notify"

	// DefaultRepeatWindow suppresses a repeated message for this long.
	DefaultRepeatWindow = 5 * time.Minute

	markerMaxAge = 24 * time.Hour
)

// Dedup remembers the last message relayed for each session so repeated
// Notification events (idle reminders) do not alert twice in a row.
// State is one marker file per session.
type Dedup struct {
	dir    string
	window time.Duration
	now    func() time.Time
}

// DefaultDedupDir is the marker directory under the OS temp directory.
func DefaultDedupDir() string {
	return filepath.Join(os.TempDir(), dedupDir)
}

// NewDedup creates a tracker storing markers in dir that suppresses repeats
// within window.
func NewDedup(dir string, window time.Duration) *Dedup {
	return &Dedup{dir: dir, window: window, now: time.Now}
}

// Seen reports whether text was the last message relayed for sessionID and
// that happened within the repeat window. Otherwise it records text and
// returns false.
func (d *Dedup) Seen(sessionID, text string) bool {
	path := d.markerPath(sessionID)
	hash := hashText(text)

	if info, err := os.Stat(path); err == nil && d.now().Sub(info.ModTime()) < d.window {
		if stored, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(stored)) == hash {
			return true
		}
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		log.Debug().Err(err).Msg("Failed to create dedup directory")
		return false
	}
	if err := os.WriteFile(path, []byte(hash), 0644); err != nil {
		log.Debug().Err(err).Msg("Failed to write dedup marker")
	}
	return false
}

// Cleanup removes markers older than a day.
func (d *Dedup) Cleanup() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}

	cutoff := d.now().Add(-markerMaxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(d.dir, entry.Name()))
		}
	}
}

func (d *Dedup) markerPath(sessionID string) string {
	return filepath.Join(d.dir, hook.SafeSessionID(sessionID)+".last")
}

func hashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}
