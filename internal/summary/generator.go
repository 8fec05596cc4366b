// Package summary turns hook events into short human-readable sentences and
// produces completion messages, using whichever LLM provider is available.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/daikw/cchooks/internal/hook"
	"github.com/daikw/cchooks/internal/llm"
)

// MaxPayloadLength caps the payload text embedded in the prompt.
const MaxPayloadLength = 1000

var completionMessages = []string{
	"Work complete!",
	"All done!",
	"Task finished!",
	"Job complete!",
	"Ready for next task!",
}

// CompletionMessages returns the canned messages used without an LLM.
func CompletionMessages() []string {
	return append([]string(nil), completionMessages...)
}

// Resolver returns the client to prompt. It is called at most once.
type Resolver func() (llm.Client, error)

// Generator builds prompts, sends them and cleans up the answers.
type Generator struct {
	resolve      Resolver
	engineerName string
	pick         func(n int) int

	client   llm.Client
	resolved bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithEngineerName personalizes completion messages.
func WithEngineerName(name string) Option {
	return func(g *Generator) { g.engineerName = name }
}

// WithPicker sets how a canned message is chosen.
func WithPicker(pick func(n int) int) Option {
	return func(g *Generator) { g.pick = pick }
}

// NewGenerator creates a generator that resolves its client lazily.
func NewGenerator(resolve Resolver, opts ...Option) *Generator {
	g := &Generator{resolve: resolve, pick: rand.Intn}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Summarize returns a one-line summary of event, or false when no provider
// is available or it produced nothing usable.
func (g *Generator) Summarize(ctx context.Context, event *hook.Event) (string, bool) {
	prompt := SummaryPrompt(event.Type(), renderPayload(event.Payload()))

	out, ok := g.prompt(ctx, prompt)
	if !ok {
		return "", false
	}
	summary := CleanSummary(out)
	return summary, summary != ""
}

// Completion asks the model for a completion message.
func (g *Generator) Completion(ctx context.Context) (string, bool) {
	out, ok := g.prompt(ctx, CompletionPrompt(g.engineerName))
	if !ok {
		return "", false
	}
	msg := CleanCompletion(out)
	return msg, msg != ""
}

// CompletionOrCanned returns a generated message when useLLM is set and the
// model answers, otherwise a random canned one.
func (g *Generator) CompletionOrCanned(ctx context.Context, useLLM bool) string {
	if useLLM {
		if msg, ok := g.Completion(ctx); ok {
			return msg
		}
	}
	return completionMessages[g.pick(len(completionMessages))]
}

func (g *Generator) prompt(ctx context.Context, text string) (string, bool) {
	client := g.clientOnce()
	if client == nil {
		return "", false
	}

	out, err := client.Prompt(ctx, text)
	if err != nil {
		log.Debug().Err(err).Str("provider", client.Name()).Msg("LLM prompt failed")
		return "", false
	}
	return out, out != ""
}

func (g *Generator) clientOnce() llm.Client {
	if g.resolved {
		return g.client
	}
	g.resolved = true

	if g.resolve == nil {
		return nil
	}
	client, err := g.resolve()
	if err != nil {
		log.Debug().Err(err).Msg("No LLM provider for summaries")
		return nil
	}
	g.client = client
	return client
}

// renderPayload pretty prints the payload with its original key order and
// caps its length.
func renderPayload(payload json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return truncatePayload(string(payload), MaxPayloadLength)
	}
	return truncatePayload(buf.String(), MaxPayloadLength)
}
