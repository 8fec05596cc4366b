package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

const slackTimeout = 10 * time.Second

// Slack posts messages to an incoming webhook.
type Slack struct {
	webhookURL string
}

// NewSlack creates a notifier for webhookURL.
func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL}
}

// Name returns the notifier name
func (s *Slack) Name() string {
	return "slack"
}

// Notify posts msg as a section with a context footer.
func (s *Slack) Notify(ctx context.Context, msg Message) error {
	if s.webhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, slackTimeout)
	defer cancel()

	webhook := &slack.WebhookMessage{
		Text:   fallbackText(msg),
		Blocks: &slack.Blocks{BlockSet: buildBlocks(msg)},
	}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, webhook); err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	return nil
}

func fallbackText(msg Message) string {
	if msg.Title == "" {
		return msg.Body
	}
	return msg.Title + ": " + msg.Body
}

func buildBlocks(msg Message) []slack.Block {
	blocks := make([]slack.Block, 0, 2)

	body := fmt.Sprintf("*%s*\n%s", escapeSlackText(msg.Title), escapeSlackText(msg.Body))
	bodyText := slack.NewTextBlockObject(slack.MarkdownType, body, false, false)
	blocks = append(blocks, slack.NewSectionBlock(bodyText, nil, nil))

	var meta []string
	if msg.Project != "" {
		meta = append(meta, "project: "+msg.Project)
	}
	if msg.SessionID != "" {
		meta = append(meta, "session: "+msg.SessionID)
	}
	if len(meta) > 0 {
		contextText := slack.NewTextBlockObject(slack.PlainTextType, strings.Join(meta, " | "), false, false)
		blocks = append(blocks, slack.NewContextBlock("", contextText))
	}
	return blocks
}

var slackReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeSlackText(s string) string {
	return slackReplacer.Replace(s)
}
