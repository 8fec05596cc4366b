package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/audio"
	"github.com/daikw/cchooks/internal/config"
	"github.com/daikw/cchooks/internal/hook"
	"github.com/daikw/cchooks/internal/llm"
	"github.com/daikw/cchooks/internal/notify"
	"github.com/daikw/cchooks/internal/store"
	"github.com/daikw/cchooks/internal/summary"
	"github.com/daikw/cchooks/internal/tts"
)

type fakeBackend struct {
	played []string
	err    error
}

func (f *fakeBackend) Play(_ context.Context, path string) error {
	f.played = append(f.played, path)
	return f.err
}

type fakeNotifier struct {
	got []notify.Message
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Notify(_ context.Context, msg notify.Message) error {
	f.got = append(f.got, msg)
	return nil
}

type fakeSpeech struct {
	spoken  []string
	formats []string
	closed  int
}

func (f *fakeSpeech) Name() string { return "fake" }

func (f *fakeSpeech) ListVoices(context.Context) ([]tts.Voice, error) { return nil, nil }

func (f *fakeSpeech) Synthesize(_ context.Context, text string, options tts.SynthesizeOptions) (io.ReadCloser, error) {
	f.spoken = append(f.spoken, text)
	f.formats = append(f.formats, options.Format)
	return io.NopCloser(strings.NewReader("audio")), nil
}

func (f *fakeSpeech) Close() error {
	f.closed++
	return nil
}

type fakeLLM struct {
	reply string
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Prompt(context.Context, string) (string, error) { return f.reply, nil }

type testEnv struct {
	deps     *deps
	backend  *fakeBackend
	notifier *fakeNotifier
	speech   *fakeSpeech
}

// newTestEnv builds deps for a temp project with no LLM keys configured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		ProjectDir:     root,
		LogDir:         filepath.Join(root, "logs"),
		SoundsDir:      filepath.Join(root, "sounds"),
		LockFile:       filepath.Join(root, ".audio_lock"),
		EventsDB:       filepath.Join(root, "logs", "events.db"),
		ActiveProvider: config.DefaultProvider,
		LogRetention:   6 * time.Hour,
	}
	require.NoError(t, os.MkdirAll(cfg.SoundsDir, 0755))

	env := &testEnv{
		deps:     newDeps(cfg),
		backend:  &fakeBackend{},
		notifier: &fakeNotifier{},
		speech:   &fakeSpeech{},
	}
	env.deps.dedup = notify.NewDedup(t.TempDir(), notify.DefaultRepeatWindow)
	env.deps.player = audio.NewPlayer(cfg.SoundsDir, cfg.LockFile, audio.WithBackend(env.backend))
	env.deps.notifiers = func() []notify.Notifier { return []notify.Notifier{env.notifier} }
	env.deps.announcer = func(context.Context) (*tts.Announcer, error) {
		return tts.NewAnnouncer(env.speech, env.deps.player, tts.SynthesizeOptions{}), nil
	}
	return env
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func mustEvent(t *testing.T, s string) *hook.Event {
	t.Helper()
	event, err := hook.ParseBytes([]byte(s))
	require.NoError(t, err)
	return event
}

func TestRunStop_LogsAndCopiesTranscript(t *testing.T) {
	env := newTestEnv(t)
	transcript := filepath.Join(t.TempDir(), "t.jsonl")
	require.NoError(t, os.WriteFile(transcript, []byte("{\"role\":\"user\"}\nnot json\n{\"role\":\"assistant\"}\n"), 0644))

	input := `{"session_id":"s1","transcript_path":"` + transcript + `","stop_hook_active":false}`
	runStop(context.Background(), env.deps, mustEvent(t, input), stopOptions{chat: true})
	runStop(context.Background(), env.deps, mustEvent(t, input), stopOptions{})

	entries, err := env.deps.logs.Read("s1", stopLogName)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	chat, err := env.deps.logs.Read("s1", "chat")
	require.NoError(t, err)
	assert.Len(t, chat, 2)

	assert.Empty(t, env.notifier.got)
	assert.Empty(t, env.backend.played)
}

func TestRunStop_NotifiesAnnouncesAndPlays(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.deps.cfg.SoundsDir, "stop1.wav"), []byte("RIFF"), 0644))

	// No API keys: the completion message falls back to a canned one.
	runStop(context.Background(), env.deps, mustEvent(t, `{"session_id":"s2"}`), stopOptions{
		notify:   true,
		announce: true,
		llm:      true,
		sound:    true,
	})

	require.Len(t, env.notifier.got, 1)
	msg := env.notifier.got[0]
	assert.Contains(t, summary.CompletionMessages(), msg.Body)
	assert.Equal(t, "s2", msg.SessionID)

	assert.Equal(t, []string{msg.Body}, env.speech.spoken)
	assert.Equal(t, []string{"wav"}, env.speech.formats)
	assert.Equal(t, 1, env.speech.closed)
	require.Len(t, env.backend.played, 2, "stop sound plus the announcement")
	assert.Equal(t, filepath.Join(env.deps.cfg.SoundsDir, "stop1.wav"), env.backend.played[0])
	assert.True(t, strings.HasSuffix(env.backend.played[1], ".wav"))
	assert.NoFileExists(t, env.deps.cfg.LockFile)
}

func TestRunStop_CleansOldSessions(t *testing.T) {
	env := newTestEnv(t)
	old := filepath.Join(env.deps.cfg.LogDir, "old-session")
	require.NoError(t, os.MkdirAll(old, 0755))
	past := time.Now().Add(-7 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	runStop(context.Background(), env.deps, mustEvent(t, `{"session_id":"fresh"}`), stopOptions{})

	assert.NoDirExists(t, old)
	assert.DirExists(t, filepath.Join(env.deps.cfg.LogDir, "fresh"))
	assert.NoFileExists(t, env.deps.cfg.EventsDB, "pruning never creates the index")
}

func TestRunStop_PrunesIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	db, err := env.deps.openStore()
	require.NoError(t, err)
	_, err = db.Add(ctx, store.Record{SessionID: "s", EventType: "Old", Time: time.Now().Add(-7 * time.Hour)})
	require.NoError(t, err)
	_, err = db.Add(ctx, store.Record{SessionID: "s", EventType: "New", Time: time.Now()})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	runStop(ctx, env.deps, mustEvent(t, `{"session_id":"s"}`), stopOptions{})

	db, err = env.deps.openStore()
	require.NoError(t, err)
	defer db.Close()

	events, err := db.Recent(ctx, 10, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "New", events[0].HookEventType)
}

func TestRunLog_AppendsAndIndexes(t *testing.T) {
	env := newTestEnv(t)
	now := time.UnixMilli(1_700_000_000_000)
	input := mustEvent(t, `{"session_id":"s3","hook_event_name":"PreToolUse","tool_name":"Read"}`)

	runLog(context.Background(), env.deps, input, logOptions{sourceApp: "demo", summarize: true, index: true}, now)

	entries, err := env.deps.logs.Read("s3", "pre_tool_use")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, string(input.Raw()), string(entries[0]))

	db, err := env.deps.openStore()
	require.NoError(t, err)
	defer db.Close()

	events, err := db.Recent(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s3", events[0].SessionID)
	assert.Equal(t, "demo", events[0].SourceApp)
	assert.Equal(t, "PreToolUse", events[0].HookEventType)
	assert.Equal(t, now.UnixMilli(), events[0].Timestamp)
	assert.Empty(t, events[0].SummaryText(), "no provider configured")
}

func TestRunLog_IndexesThenSummarizes(t *testing.T) {
	env := newTestEnv(t)
	env.deps.selector.Register(config.DefaultProvider, func(*config.Config) (llm.Client, error) {
		return &fakeLLM{reply: "Reads the config file."}, nil
	})
	input := mustEvent(t, `{"session_id":"s5","hook_event_name":"PreToolUse","tool_name":"Read"}`)

	runLog(context.Background(), env.deps, input, logOptions{summarize: true, index: true}, time.Now())

	db, err := env.deps.openStore()
	require.NoError(t, err)
	defer db.Close()

	events, err := db.Recent(context.Background(), 10, true)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Reads the config file", events[0].SummaryText())
}

func TestRunLog_ExplicitEventTypeAndUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	runLog(context.Background(), env.deps, mustEvent(t, `{"foo":1}`), logOptions{eventType: "SubagentStop"}, time.Now())

	entries, err := env.deps.logs.Read(hook.UnknownSession, "subagent_stop")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NoFileExists(t, env.deps.cfg.EventsDB)
}

func TestRunNotify(t *testing.T) {
	env := newTestEnv(t)

	runNotify(context.Background(), env.deps,
		mustEvent(t, `{"session_id":"s4","message":"Claude needs your permission to use Bash"}`),
		notifyOptions{desktop: true, announce: true})

	require.Len(t, env.notifier.got, 1)
	assert.Equal(t, notify.UrgencyCritical, env.notifier.got[0].Urgency)
	assert.Equal(t, []string{"Claude needs your permission to use Bash"}, env.speech.spoken)
	assert.Equal(t, 1, env.speech.closed)

	entries, err := env.deps.logs.Read("s4", notificationLogName)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// The same reminder again is logged but not relayed.
	runNotify(context.Background(), env.deps,
		mustEvent(t, `{"session_id":"s4","message":"Claude needs your permission to use Bash"}`),
		notifyOptions{desktop: true, announce: true})
	assert.Len(t, env.notifier.got, 1)

	entries, err = env.deps.logs.Read("s4", notificationLogName)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPlaySound(t *testing.T) {
	t.Run("plays", func(t *testing.T) {
		env := newTestEnv(t)
		out := captureStdout(t)
		require.NoError(t, os.WriteFile(filepath.Join(env.deps.cfg.SoundsDir, "stop.wav"), []byte("RIFF"), 0644))

		require.NoError(t, playSound(context.Background(), env.deps.player, nil))
		assert.Contains(t, out.String(), "Audio played successfully")
	})

	t.Run("busy is success", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.WriteFile(env.deps.cfg.LockFile, nil, 0644))

		assert.NoError(t, playSound(context.Background(), env.deps.player, []string{"stop.wav"}))
		assert.Empty(t, env.backend.played)
	})

	t.Run("missing file exits 1", func(t *testing.T) {
		env := newTestEnv(t)
		err := playSound(context.Background(), env.deps.player, []string{"nope.wav"})

		var exitErr cli.ExitCoder
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.ExitCode())
	})

	t.Run("playback failure exits 1", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.err = errors.New("no device")
		require.NoError(t, os.WriteFile(filepath.Join(env.deps.cfg.SoundsDir, "stop.wav"), []byte("RIFF"), 0644))

		err := playSound(context.Background(), env.deps.player, []string{"stop.wav"})
		var exitErr cli.ExitCoder
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.ExitCode())
		assert.NoFileExists(t, env.deps.cfg.LockFile)
	})
}

func TestListEvents(t *testing.T) {
	env := newTestEnv(t)
	out := captureStdout(t)
	ctx := context.Background()

	db, err := env.deps.openStore()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, listEvents(ctx, db, eventFilter{limit: 10}))
	assert.Contains(t, out.String(), "No events indexed yet")

	input := mustEvent(t, `{"session_id":"abcdef123456","hook_event_name":"Stop"}`)
	runLog(ctx, env.deps, input, logOptions{index: true}, time.Now())

	out.Reset()
	require.NoError(t, listEvents(ctx, db, eventFilter{limit: 10}))
	assert.Contains(t, out.String(), "abcdef12")
	assert.Contains(t, out.String(), "Total events: 1, with summaries: 0")

	out.Reset()
	require.NoError(t, listEvents(ctx, db, eventFilter{limit: 10, sessionID: "other"}))
	assert.Contains(t, out.String(), "No events indexed yet")
}

func TestListEvents_Summarized(t *testing.T) {
	env := newTestEnv(t)
	out := captureStdout(t)
	ctx := context.Background()

	db, err := env.deps.openStore()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, listEvents(ctx, db, eventFilter{limit: 10, summarized: true}))
	assert.Contains(t, out.String(), "No summarized events yet")

	now := time.Now()
	_, err = db.Add(ctx, store.Record{SessionID: "s", EventType: "PreToolUse", Summary: "Reads main.go", Time: now})
	require.NoError(t, err)
	_, err = db.Add(ctx, store.Record{SessionID: "s", EventType: "PostToolUse", Time: now.Add(time.Second)})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, listEvents(ctx, db, eventFilter{limit: 10, summarized: true}))
	assert.Contains(t, out.String(), "Recent events (1):")
	assert.Contains(t, out.String(), "Reads main.go")
	assert.NotContains(t, out.String(), "PostToolUse")
	assert.Contains(t, out.String(), "Total events: 2, with summaries: 1")
}

func TestListEvents_SessionLimit(t *testing.T) {
	env := newTestEnv(t)
	out := captureStdout(t)
	ctx := context.Background()

	db, err := env.deps.openStore()
	require.NoError(t, err)
	defer db.Close()

	base := time.Now()
	for i, eventType := range []string{"SessionStart", "PreToolUse", "Stop"} {
		_, err := db.Add(ctx, store.Record{SessionID: "s", EventType: eventType, Time: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	require.NoError(t, listEvents(ctx, db, eventFilter{limit: 2, sessionID: "s"}))
	assert.Contains(t, out.String(), "Recent events (2):")
	assert.NotContains(t, out.String(), "SessionStart")
	assert.Less(t, strings.Index(out.String(), "PreToolUse"), strings.Index(out.String(), "Stop "))
}

func TestSampleEventParses(t *testing.T) {
	event := mustEvent(t, sampleEvent)
	assert.Equal(t, "PreToolUse", event.Type())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(event.Payload(), &payload))
	assert.Equal(t, "Read", payload["tool_name"])
}

func TestSelectClient_NoKeys(t *testing.T) {
	env := newTestEnv(t)

	_, err := selectClient(env.deps, "")
	assert.Error(t, err)

	_, err = selectClient(env.deps, "openrouter")
	assert.Error(t, err)
}
