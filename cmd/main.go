package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/config"
	"github.com/daikw/cchooks/internal/logging"
)

var (
	version  = "dev"
	revision = "none"
)

// Overridden in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

func main() {
	var (
		cfg       *config.Config
		logCloser io.Closer
	)

	wire := func() *deps { return newDeps(cfg) }

	app := &cli.Command{
		Name:  "cchooks",
		Usage: "Claude Code lifecycle hooks: event logs, sounds and LLM summaries",
		Description: `cchooks is invoked by Claude Code hooks with one JSON event on stdin.
It records events per session, plays completion sounds, and asks an LLM
(Anthropic or OpenRouter) for short summaries and completion messages.
Hook commands always exit 0.`,
		Version: fmt.Sprintf("%s (rev: %s)", version, revision),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Enable verbose logging",
			},
			&cli.StringFlag{
				Name:  "project-dir",
				Usage: "Project directory holding .env, logs/ and sounds/ (default: $CLAUDE_PROJECT_DIR or cwd)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON diagnostics to this rotating file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "stop",
				Aliases: []string{"stop_hook"},
				Usage:   "Handle the Stop hook: log the event and announce completion",
				Action:  func(ctx context.Context, c *cli.Command) error { return handleStop(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "chat", Usage: "Copy the session transcript to chat.json"},
					&cli.BoolFlag{Name: "notify", Usage: "Send a desktop (and Slack, if configured) completion notification"},
					&cli.BoolFlag{Name: "announce", Usage: "Speak the completion message with the configured TTS provider"},
					&cli.BoolFlag{Name: "llm", Usage: "Ask the LLM for the completion message instead of a canned one"},
					&cli.BoolFlag{Name: "sound", Usage: "Play a stop*.wav completion sound"},
				},
			},
			{
				Name:    "log",
				Aliases: []string{"send_event"},
				Usage:   "Append a hook event to the session log",
				Action:  func(ctx context.Context, c *cli.Command) error { return handleLog(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "event-type", Usage: "Hook event type (defaults to hook_event_name from stdin)"},
					&cli.StringFlag{Name: "source-app", Usage: "Source application name", Value: "cchooks"},
					&cli.BoolFlag{Name: "summarize", Usage: "Generate an LLM summary of the event"},
					&cli.BoolFlag{Name: "index", Usage: "Store the event in the SQLite event index"},
				},
			},
			{
				Name:    "notify",
				Aliases: []string{"notification_hook"},
				Usage:   "Handle Claude Code notifications and alert the user",
				Action:  func(ctx context.Context, c *cli.Command) error { return handleNotify(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "desktop", Usage: "Show desktop (and Slack, if configured) notifications", Value: true},
					&cli.BoolFlag{Name: "announce", Usage: "Speak the notification with the configured TTS provider"},
				},
			},
			{
				Name:    "play",
				Aliases: []string{"play_audio"},
				Usage:   "Play one of the given sounds unless another sound is playing",
				Action:  func(ctx context.Context, c *cli.Command) error { return handlePlay(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "Sound file or pattern under the sounds directory (repeatable, one is chosen at random)",
						Value: []string{"stop.wav"},
					},
				},
			},
			{
				Name:   "summarize",
				Usage:  "Summarize the hook event on stdin",
				Action: func(ctx context.Context, c *cli.Command) error { return handleSummarize(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "sample", Usage: "Summarize a built-in PreToolUse Read event"},
				},
			},
			{
				Name:   "completion",
				Usage:  "Print a completion message",
				Action: func(ctx context.Context, c *cli.Command) error { return handleCompletion(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "static", Usage: "Use a canned message without calling the LLM"},
				},
			},
			{
				Name:      "prompt",
				Usage:     "Send a raw prompt to the active LLM provider",
				ArgsUsage: "<text...>",
				Action:    func(ctx context.Context, c *cli.Command) error { return handlePrompt(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Usage: "Use this provider without fallback (anthropic, openrouter)"},
				},
			},
			{
				Name:   "check",
				Usage:  "Show configuration and test the LLM providers",
				Action: func(ctx context.Context, c *cli.Command) error { return handleCheck(ctx, c, wire()) },
			},
			{
				Name:   "events",
				Usage:  "List recently indexed events with their summaries",
				Action: func(ctx context.Context, c *cli.Command) error { return handleEvents(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Number of events to show", Value: 10},
					&cli.StringFlag{Name: "session", Usage: "Only show the latest events of this session, oldest first"},
					&cli.BoolFlag{Name: "summarized", Usage: "Only show events that have an LLM summary"},
				},
			},
			{
				Name:   "voices",
				Usage:  "List voices for a text-to-speech provider",
				Action: func(ctx context.Context, c *cli.Command) error { return handleVoices(ctx, c, wire()) },
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Usage: "TTS provider: openai, polly, gcp (defaults to TTS_PROVIDER)"},
				},
			},
		},
		Before: func(ctx context.Context, c *cli.Command) error {
			loaded, err := config.Load(c.String("project-dir"))
			if err != nil {
				return err
			}
			cfg = loaded

			logFile := c.String("log-file")
			if logFile == "" {
				logFile = cfg.LogFile
			}
			logCloser = logging.Setup(logging.Options{
				Verbose: c.Bool("verbose"),
				File:    logFile,
			})
			return nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}
