// Package sessionlog persists hook events as per-session JSON arrays.
//
// Each session gets a directory under the log root; every log inside it is a
// pretty printed JSON array that grows by read-modify-write. Writers do not
// lock, so two hooks racing on the same file may lose an entry.
package sessionlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/cchooks/internal/hook"
)

// ChatLogName is the log written from the session transcript.
const ChatLogName = "chat"

// ErrInvalidRecord is returned when a record is not valid JSON.
var ErrInvalidRecord = errors.New("record is not valid JSON")

// Store writes session logs under a root directory.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore creates a store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{root: dir, now: time.Now}
}

// Root returns the log root directory.
func (s *Store) Root() string {
	return s.root
}

// SessionDir returns the directory holding the logs of a session.
func (s *Store) SessionDir(sessionID string) string {
	return filepath.Join(s.root, hook.SafeSessionID(sessionID))
}

// Path returns the file backing the named log of a session.
func (s *Store) Path(sessionID, name string) string {
	return filepath.Join(s.SessionDir(sessionID), name+".json")
}

// Append adds record to the end of the named log. A missing or unreadable
// log starts over as an empty array.
func (s *Store) Append(sessionID, name string, record json.RawMessage) error {
	if !json.Valid(record) {
		return ErrInvalidRecord
	}

	dir := s.SessionDir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	path := s.Path(sessionID, name)
	entries, err := readArray(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Discarding unreadable session log")
		entries = nil
	}

	entries = append(entries, record)
	return writeArray(path, entries)
}

// Read returns the entries of the named log. A missing log is empty.
func (s *Store) Read(sessionID, name string) ([]json.RawMessage, error) {
	entries, err := readArray(s.Path(sessionID, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return entries, err
}

// CopyTranscript converts a JSONL transcript into the session's chat log,
// replacing any previous copy. Lines that are not valid JSON are skipped.
func (s *Store) CopyTranscript(sessionID, transcriptPath string) (int, error) {
	f, err := os.Open(transcriptPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries := make([]json.RawMessage, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			log.Debug().Str("path", transcriptPath).Msg("Skipping invalid transcript line")
			continue
		}
		entries = append(entries, append(json.RawMessage(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read transcript: %w", err)
	}

	if err := os.MkdirAll(s.SessionDir(sessionID), 0755); err != nil {
		return 0, fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := writeArray(s.Path(sessionID, ChatLogName), entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Cleanup removes session directories last modified before maxAge ago and
// returns how many were removed. Files in the root, such as the events
// database, are left alone.
func (s *Store) Cleanup(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.root, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				log.Debug().Err(err).Str("path", path).Msg("Failed to remove old session logs")
				continue
			}
			removed++
		}
	}
	return removed
}

func readArray(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

func writeArray(path string, entries []json.RawMessage) error {
	if entries == nil {
		entries = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}
