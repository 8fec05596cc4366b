package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/cchooks/internal/hook"
	"github.com/daikw/cchooks/internal/llm"
)

// sampleEvent is the PreToolUse event used by `summarize --sample` and `check`.
const sampleEvent = `{
  "hook_event_type": "PreToolUse",
  "payload": {
    "tool_name": "Read",
    "parameters": {"file_path": "/test/file.py"}
  }
}`

const checkPrompt = "Say hello in exactly 3 words"

func handleSummarize(ctx context.Context, c *cli.Command, d *deps) error {
	var (
		event *hook.Event
		err   error
	)
	if c.Bool("sample") {
		event, err = hook.ParseBytes([]byte(sampleEvent))
	} else {
		event, err = hook.Parse(stdin)
	}
	if err != nil {
		log.Debug().Err(err).Msg("No event to summarize")
		return nil
	}

	if s, ok := d.generator().Summarize(ctx, event); ok {
		fmt.Fprintln(stdout, s)
	}
	return nil
}

func handleCompletion(ctx context.Context, c *cli.Command, d *deps) error {
	fmt.Fprintln(stdout, d.generator().CompletionOrCanned(ctx, !c.Bool("static")))
	return nil
}

func handlePrompt(ctx context.Context, c *cli.Command, d *deps) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return cli.Exit("prompt text is required", 1)
	}

	client, err := selectClient(d, c.String("provider"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out, err := client.Prompt(ctx, text)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", client.Name(), err), 1)
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func selectClient(d *deps, provider string) (llm.Client, error) {
	if provider != "" {
		return d.selector.Get(d.cfg, provider)
	}
	return d.selector.Select(d.cfg)
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
)

func handleCheck(ctx context.Context, c *cli.Command, d *deps) error {
	if !runCheck(ctx, d) {
		return cli.Exit(failMark("❌ Some checks failed!"), 1)
	}
	return nil
}

// runCheck prints configuration and exercises every configured provider and
// the summarizer. It reports whether all checks passed.
func runCheck(ctx context.Context, d *deps) bool {
	masked := d.cfg.Masked()
	passed := true

	fmt.Fprintln(stdout, "Checking LLM configuration\n"+strings.Repeat("=", 40))
	fmt.Fprintf(stdout, "%s Project dir: %s\n", okMark("✓"), masked.ProjectDir)
	fmt.Fprintf(stdout, "%s Log dir: %s\n", okMark("✓"), masked.LogDir)
	fmt.Fprintf(stdout, "%s Active provider: %s\n", okMark("✓"), masked.ActiveProvider)

	for _, name := range d.selector.Names() {
		pc, _ := masked.Provider(name)
		key := pc.APIKey
		if key == "" {
			fmt.Fprintf(stdout, "%s %s API key: missing\n", warnMark("⚠"), name)
			continue
		}
		fmt.Fprintf(stdout, "%s %s API key: %s, model: %s\n", okMark("✓"), name, key, pc.Model)

		client, err := d.selector.Get(d.cfg, name)
		if err != nil {
			fmt.Fprintf(stdout, "%s %s: %v\n", failMark("❌"), name, err)
			passed = false
			continue
		}
		out, err := client.Prompt(ctx, checkPrompt)
		if err != nil {
			fmt.Fprintf(stdout, "%s %s: %v\n", failMark("❌"), name, err)
			passed = false
			continue
		}
		fmt.Fprintf(stdout, "%s %s response: %s\n", okMark("✓"), name, out)
	}

	fmt.Fprintln(stdout, "\nTesting summarizer with provider selection...")
	if _, err := d.selector.Select(d.cfg); err != nil {
		fmt.Fprintf(stdout, "%s %v\n", failMark("❌"), err)
		return false
	}

	event, _ := hook.ParseBytes([]byte(sampleEvent))
	s, ok := d.generator().Summarize(ctx, event)
	if !ok {
		fmt.Fprintf(stdout, "%s Summarizer returned empty result\n", failMark("❌"))
		return false
	}
	fmt.Fprintf(stdout, "%s Generated summary: %s\n", okMark("✓"), s)
	if passed {
		fmt.Fprintln(stdout, okMark("✅ All checks passed!"))
	}
	return passed
}
