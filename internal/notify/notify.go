// Package notify fans rate-limit signals out to UI consumers. Delivery is
// best-effort: a failed or absent consumer never surfaces to the retrying
// operation.
package notify

import (
	"context"
	"log/slog"

	"gitwiki.app/server/internal/retry"
)

type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a Notifier that writes rate-limit signals to the
// structured log. This is the floor every deployment gets, Redis or not.
func NewLogNotifier(logger *slog.Logger) retry.Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) RateLimitHit(ctx context.Context, event retry.Event) {
	n.logger.WarnContext(ctx, "rate limit hit",
		"attempt", event.Attempt,
		"max_retries", event.MaxRetries,
		"delay_ms", event.Delay.Milliseconds(),
		"status", event.Error.Status,
		"error", event.Error.Message)
}

func (n *logNotifier) RateLimitResolved(ctx context.Context, event retry.SuccessEvent) {
	n.logger.InfoContext(ctx, "rate limit resolved",
		"attempts", event.Attempts)
}

type multiNotifier struct {
	notifiers []retry.Notifier
}

// NewMulti broadcasts each signal to every given notifier, skipping nils.
func NewMulti(notifiers ...retry.Notifier) retry.Notifier {
	var active []retry.Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &multiNotifier{notifiers: active}
}

func (m *multiNotifier) RateLimitHit(ctx context.Context, event retry.Event) {
	for _, n := range m.notifiers {
		n.RateLimitHit(ctx, event)
	}
}

func (m *multiNotifier) RateLimitResolved(ctx context.Context, event retry.SuccessEvent) {
	for _, n := range m.notifiers {
		n.RateLimitResolved(ctx, event)
	}
}
