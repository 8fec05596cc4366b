package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/hook"
	"github.com/daikw/cchooks/internal/logging"
	"github.com/daikw/cchooks/internal/notify"
	"github.com/daikw/cchooks/internal/store"
)

const stopLogName = "stop"

// stopSounds is tried when --sound is set.
var stopSounds = []string{"stop*.wav"}

type stopOptions struct {
	chat     bool
	notify   bool
	announce bool
	llm      bool
	sound    bool
}

func handleStop(ctx context.Context, c *cli.Command, d *deps) error {
	// Suppress normal output when running as hook
	logging.Quiet()

	event, err := hook.Parse(stdin)
	if err != nil {
		log.Debug().Err(err).Msg("No Stop hook event on stdin")
		return nil
	}

	runStop(ctx, d, event, stopOptions{
		chat:     c.Bool("chat"),
		notify:   c.Bool("notify"),
		announce: c.Bool("announce"),
		llm:      c.Bool("llm"),
		sound:    c.Bool("sound"),
	})
	return nil
}

// runStop never fails: every step logs its error and moves on.
func runStop(ctx context.Context, d *deps, event *hook.Event, opts stopOptions) {
	log.Debug().
		Str("session_id", event.SessionID).
		Bool("stop_hook_active", event.StopHookActive).
		Msg("Received Stop hook event")

	if err := d.logs.Append(event.SessionID, stopLogName, event.Raw()); err != nil {
		log.Warn().Err(err).Msg("Failed to append stop log")
	}

	if opts.chat && event.TranscriptPath != "" {
		n, err := d.logs.CopyTranscript(event.SessionID, event.TranscriptPath)
		if err != nil {
			log.Debug().Err(err).Str("transcript", event.TranscriptPath).Msg("Failed to copy transcript")
		} else {
			log.Debug().Int("entries", n).Msg("Copied transcript to chat log")
		}
	}

	if removed := d.logs.Cleanup(d.cfg.LogRetention); removed > 0 {
		log.Debug().Int("removed", removed).Msg("Removed old session logs")
	}
	pruneIndex(ctx, d)

	if opts.sound {
		if _, err := d.player.Play(ctx, stopSounds...); err != nil {
			log.Debug().Err(err).Msg("Completion sound not played")
		}
	}

	if !opts.notify && !opts.announce {
		return
	}

	message := d.generator().CompletionOrCanned(ctx, opts.llm)
	log.Debug().Str("text", message).Msg("Completion message")

	if opts.notify {
		err := notify.All(ctx, d.notifiers(), notify.Message{
			Body:      message,
			Urgency:   notify.UrgencyFor(message),
			Project:   filepath.Base(d.cfg.ProjectDir),
			SessionID: event.SessionID,
		})
		if err != nil {
			log.Debug().Err(err).Msg("Notification failed")
		}
	}

	if opts.announce {
		announcer, err := d.announcer(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("No TTS provider for announcement")
			return
		}
		defer func() { _ = announcer.Close() }()
		if err := announcer.Announce(ctx, message); err != nil {
			log.Debug().Err(err).Msg("Announcement failed")
		}
	}
}

// pruneIndex applies the session log retention to the event index. An index
// that was never created stays absent.
func pruneIndex(ctx context.Context, d *deps) {
	if _, err := os.Stat(d.cfg.EventsDB); err != nil {
		return
	}

	db, err := d.openStore()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to open event index")
		return
	}
	defer func() { _ = db.Close() }()

	removed, err := db.Prune(ctx, d.cfg.LogRetention)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to prune event index")
		return
	}
	if removed > 0 {
		log.Debug().Int64("removed", removed).Msg("Pruned old indexed events")
	}
}

type logOptions struct {
	eventType string
	sourceApp string
	summarize bool
	index     bool
}

func handleLog(ctx context.Context, c *cli.Command, d *deps) error {
	logging.Quiet()

	event, err := hook.Parse(stdin)
	if err != nil {
		log.Debug().Err(err).Msg("No hook event on stdin")
		return nil
	}

	runLog(ctx, d, event, logOptions{
		eventType: c.String("event-type"),
		sourceApp: c.String("source-app"),
		summarize: c.Bool("summarize"),
		index:     c.Bool("index"),
	}, time.Now())
	return nil
}

// runLog appends the raw input to <session>/<event_type>.json and, when asked,
// summarizes and indexes the wrapped event.
func runLog(ctx context.Context, d *deps, input *hook.Event, opts logOptions, now time.Time) {
	wrapped := hook.Wrap(input, opts.eventType, opts.sourceApp, now)
	eventType := wrapped.Type()

	if err := d.logs.Append(input.SessionID, hook.LogName(eventType), input.Raw()); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to append event log")
	}

	if !opts.index {
		if opts.summarize {
			summarizeEvent(ctx, d, wrapped)
		}
		return
	}

	db, err := d.openStore()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open event index")
		return
	}
	defer func() { _ = db.Close() }()

	// The summary is attached once the event is stored.
	id, err := db.Add(ctx, store.Record{
		SessionID: hook.SessionOrUnknown(input.SessionID),
		SourceApp: opts.sourceApp,
		EventType: eventType,
		Payload:   input.Raw(),
		Time:      now,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to index event")
		return
	}
	log.Debug().Str("id", id).Str("event_type", eventType).Msg("Indexed event")

	if !opts.summarize {
		return
	}
	if s, ok := summarizeEvent(ctx, d, wrapped); ok {
		if err := db.SetSummary(ctx, id, s); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("Failed to store event summary")
		}
	}
}

func summarizeEvent(ctx context.Context, d *deps, event *hook.Event) (string, bool) {
	s, ok := d.generator().Summarize(ctx, event)
	if ok {
		log.Debug().Str("summary", s).Msg("Generated event summary")
	}
	return s, ok
}
