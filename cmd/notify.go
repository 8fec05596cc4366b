package main

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/hook"
	"github.com/daikw/cchooks/internal/logging"
	"github.com/daikw/cchooks/internal/notify"
)

const notificationLogName = "notification"

type notifyOptions struct {
	desktop  bool
	announce bool
}

func handleNotify(ctx context.Context, c *cli.Command, d *deps) error {
	logging.Quiet()

	event, err := hook.Parse(stdin)
	if err != nil {
		log.Debug().Err(err).Msg("No Notification hook event on stdin")
		return nil
	}

	runNotify(ctx, d, event, notifyOptions{
		desktop:  c.Bool("desktop"),
		announce: c.Bool("announce"),
	})
	return nil
}

// runNotify logs a Notification hook event and relays its message.
func runNotify(ctx context.Context, d *deps, event *hook.Event, opts notifyOptions) {
	log.Debug().
		Str("session_id", event.SessionID).
		Str("text", event.Message).
		Msg("Received notification")

	if err := d.logs.Append(event.SessionID, notificationLogName, event.Raw()); err != nil {
		log.Warn().Err(err).Msg("Failed to append notification log")
	}

	if event.Message == "" {
		return
	}
	d.dedup.Cleanup()
	if d.dedup.Seen(event.SessionID, event.Message) {
		log.Debug().Msg("Repeated notification, skipping")
		return
	}

	if opts.desktop {
		err := notify.All(ctx, d.notifiers(), notify.Message{
			Body:      event.Message,
			Urgency:   notify.UrgencyFor(event.Message),
			Project:   filepath.Base(d.cfg.ProjectDir),
			SessionID: event.SessionID,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to show notification")
		}
	}

	if opts.announce {
		announcer, err := d.announcer(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("No TTS provider for announcement")
			return
		}
		defer func() { _ = announcer.Close() }()
		if err := announcer.Announce(ctx, event.Message); err != nil {
			log.Warn().Err(err).Msg("Failed to announce notification")
		}
	}
}
