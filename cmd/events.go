package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/store"
	"github.com/daikw/cchooks/internal/tts"
)

func handleEvents(ctx context.Context, c *cli.Command, d *deps) error {
	db, err := d.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return listEvents(ctx, db, eventFilter{
		limit:      int(c.Int("limit")),
		sessionID:  c.String("session"),
		summarized: c.Bool("summarized"),
	})
}

type eventFilter struct {
	limit      int
	sessionID  string
	summarized bool
}

func listEvents(ctx context.Context, db *store.Store, filter eventFilter) error {
	var (
		events []store.Event
		err    error
	)
	if filter.sessionID != "" {
		events, err = db.Session(ctx, filter.sessionID, filter.limit)
	} else {
		events, err = db.Recent(ctx, filter.limit, filter.summarized)
	}
	if err != nil {
		return err
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		if filter.summarized {
			fmt.Fprintln(stdout, "No summarized events yet. Run hooks with 'cchooks log --index --summarize'")
			return nil
		}
		fmt.Fprintln(stdout, "No events indexed yet. Run hooks with 'cchooks log --index'")
		return nil
	}

	fmt.Fprintf(stdout, "Recent events (%d):\n", len(events))
	for _, e := range events {
		summary := e.SummaryText()
		if summary == "" {
			summary = "-"
		}
		fmt.Fprintf(stdout, "  %s  %-18s %-12s %s\n",
			e.Time().Local().Format(time.DateTime), e.HookEventType, shortID(e.SessionID), summary)
	}

	fmt.Fprintf(stdout, "\nTotal events: %d, with summaries: %d\n", counts.Total, counts.Summarized)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func handleVoices(ctx context.Context, c *cli.Command, d *deps) error {
	ttsCfg := d.cfg.TTS
	if p := c.String("provider"); p != "" {
		ttsCfg.Provider = p
	}

	provider, _, err := tts.New(ctx, ttsCfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	voices, err := provider.ListVoices(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to list %s voices: %v", provider.Name(), err), 1)
	}

	log.Debug().Int("count", len(voices)).Str("provider", provider.Name()).Msg("Listed voices")
	fmt.Fprintf(stdout, "Available voices for %s:\n\n", provider.Name())
	for _, v := range voices {
		fmt.Fprintf(stdout, "  %s - %s (%s, %s)\n", v.ID, v.Name, v.Gender, v.Language)
	}
	return nil
}
