// Package hook provides the event record passed to lifecycle hooks on stdin.
// For more information about Claude Code hooks, see:
// https://docs.anthropic.com/en/docs/claude-code/hooks
package hook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// UnknownType is reported when an event carries no type information.
const UnknownType = "Unknown"

// UnknownSession names the log directory for events without a usable session id.
const UnknownSession = "unknown"

// ErrNotObject is returned when stdin does not hold a JSON object.
var ErrNotObject = errors.New("hook input is not a JSON object")

// Event is one hook invocation record. Only the well-known keys are decoded;
// the original bytes are kept so the record can be logged verbatim.
type Event struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	CWD            string          `json:"cwd,omitempty"`
	HookEventName  string          `json:"hook_event_name"`
	HookEventType  string          `json:"hook_event_type"`
	SourceApp      string          `json:"source_app"`
	StopHookActive bool            `json:"stop_hook_active"`
	Message        string          `json:"message,omitempty"` // Notification events
	RawPayload     json.RawMessage `json:"payload"`

	raw json.RawMessage
}

// Parse decodes a single event object from r.
func Parse(r io.Reader) (*Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes a single event object.
func ParseBytes(data []byte) (*Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrNotObject
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	event.raw = append(json.RawMessage(nil), data...)
	return &event, nil
}

// ReadEvent is a convenience function to read an event from stdin
func ReadEvent() (*Event, error) {
	return Parse(os.Stdin)
}

// Type returns hook_event_type, then hook_event_name, then UnknownType.
func (e *Event) Type() string {
	if e.HookEventType != "" {
		return e.HookEventType
	}
	if e.HookEventName != "" {
		return e.HookEventName
	}
	return UnknownType
}

// Payload returns the payload field, or an empty object when absent or null.
func (e *Event) Payload() json.RawMessage {
	p := bytes.TrimSpace(e.RawPayload)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return json.RawMessage("{}")
	}
	return p
}

// Raw returns the record exactly as received.
func (e *Event) Raw() json.RawMessage {
	if len(e.raw) == 0 {
		data, _ := json.Marshal(e)
		return data
	}
	return e.raw
}

// SessionDir returns a directory name derived from the session id that is
// safe to join onto the log root.
func (e *Event) SessionDir() string {
	return SafeSessionID(e.SessionID)
}

// SafeSessionID maps an arbitrary session id to a single path element.
func SafeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownSession
	}
	base := filepath.Base(filepath.Clean("/" + id))
	if base == "/" || base == "." || base == ".." || base == string(filepath.Separator) {
		return UnknownSession
	}
	return base
}

// Wrap builds an indexed event record around raw hook input, the shape the
// observability server expects: source app, session, type and the original
// input as payload.
func Wrap(input *Event, eventType, sourceApp string, now time.Time) *Event {
	if eventType == "" {
		eventType = input.Type()
	}
	wrapped := &Event{
		SessionID:      input.SessionID,
		TranscriptPath: input.TranscriptPath,
		HookEventType:  eventType,
		SourceApp:      sourceApp,
		RawPayload:     input.Raw(),
	}

	record := struct {
		SourceApp     string          `json:"source_app"`
		SessionID     string          `json:"session_id"`
		HookEventType string          `json:"hook_event_type"`
		Payload       json.RawMessage `json:"payload"`
		Timestamp     int64           `json:"timestamp"`
	}{
		SourceApp:     sourceApp,
		SessionID:     SessionOrUnknown(input.SessionID),
		HookEventType: eventType,
		Payload:       input.Raw(),
		Timestamp:     now.UnixMilli(),
	}
	wrapped.raw, _ = json.Marshal(record)
	return wrapped
}

// SessionOrUnknown returns id, or UnknownSession when it is blank.
func SessionOrUnknown(id string) string {
	if strings.TrimSpace(id) == "" {
		return UnknownSession
	}
	return id
}

// LogName converts an event type such as "PreToolUse" into the snake_case
// file name stem used for its session log ("pre_tool_use").
func LogName(eventType string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range eventType {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
		default:
			if b.Len() > 0 && prevLower {
				b.WriteByte('_')
			}
			prevLower = false
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "unknown"
	}
	return name
}
