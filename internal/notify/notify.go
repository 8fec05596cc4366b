// Package notify delivers completion messages outside the terminal.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Urgency levels understood by desktop notifiers.
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

// Message is a single notification.
type Message struct {
	Title     string
	Body      string
	Urgency   string
	Project   string
	SessionID string
}

// Notifier delivers messages to one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// UrgencyFor classifies a message by its content.
func UrgencyFor(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "permission"), strings.Contains(lower, "error"):
		return UrgencyCritical
	case strings.Contains(lower, "idle"):
		return UrgencyLow
	default:
		return UrgencyNormal
	}
}

// All sends msg through every notifier and reports each failure.
func All(ctx context.Context, notifiers []Notifier, msg Message) error {
	if msg.Title == "" {
		msg.Title = "Claude Code"
	}
	if msg.Urgency == "" {
		msg.Urgency = UrgencyFor(msg.Body)
	}

	var errs []error
	for _, n := range notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
