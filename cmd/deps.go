package main

import (
	"context"

	"github.com/daikw/cchooks/internal/audio"
	"github.com/daikw/cchooks/internal/config"
	"github.com/daikw/cchooks/internal/llm"
	"github.com/daikw/cchooks/internal/notify"
	"github.com/daikw/cchooks/internal/sessionlog"
	"github.com/daikw/cchooks/internal/store"
	"github.com/daikw/cchooks/internal/summary"
	"github.com/daikw/cchooks/internal/tts"
)

// deps wires the packages a command needs from the loaded config.
type deps struct {
	cfg      *config.Config
	logs     *sessionlog.Store
	player   *audio.Player
	selector *llm.Selector
	dedup    *notify.Dedup

	// Overridden in tests.
	notifiers func() []notify.Notifier
	announcer func(ctx context.Context) (*tts.Announcer, error)
	openStore func() (*store.Store, error)
}

func newDeps(cfg *config.Config) *deps {
	d := &deps{
		cfg:      cfg,
		logs:     sessionlog.NewStore(cfg.LogDir),
		player:   audio.NewPlayer(cfg.SoundsDir, cfg.LockFile),
		selector: llm.NewSelector(),
		dedup:    notify.NewDedup(notify.DefaultDedupDir(), notify.DefaultRepeatWindow),
	}
	d.notifiers = d.defaultNotifiers
	d.announcer = d.defaultAnnouncer
	d.openStore = func() (*store.Store, error) { return store.Open(cfg.EventsDB) }
	return d
}

func (d *deps) generator() *summary.Generator {
	return summary.NewGenerator(
		func() (llm.Client, error) { return d.selector.Select(d.cfg) },
		summary.WithEngineerName(d.cfg.EngineerName),
	)
}

func (d *deps) defaultNotifiers() []notify.Notifier {
	notifiers := []notify.Notifier{notify.NewDesktop()}
	if d.cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlack(d.cfg.SlackWebhookURL))
	}
	return notifiers
}

func (d *deps) defaultAnnouncer(ctx context.Context) (*tts.Announcer, error) {
	provider, voice, err := tts.New(ctx, d.cfg.TTS)
	if err != nil {
		return nil, err
	}
	return tts.NewAnnouncer(provider, d.player, tts.SynthesizeOptions{Voice: voice}), nil
}
