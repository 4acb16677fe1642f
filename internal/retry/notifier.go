package retry

import (
	"context"
	"time"
)

// ErrorInfo mirrors the status/message pair of the provider error that
// triggered a rate-limit wait.
type ErrorInfo struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Event is the rate-limit-hit signal, emitted before a 403/429 backoff wait.
type Event struct {
	Message    string        `json:"message"`
	Retrying   bool          `json:"retrying"`
	Attempt    int           `json:"attempt"`
	MaxRetries int           `json:"maxRetries"`
	Delay      time.Duration `json:"-"`
	Error      ErrorInfo     `json:"error"`
}

// SuccessEvent is the rate-limit-success signal, emitted once when an
// operation finally succeeds after at least one rate-limit wait.
type SuccessEvent struct {
	Message  string `json:"message"`
	Attempts int    `json:"attempts"`
}

// Notifier receives fire-and-forget rate-limit broadcasts. Implementations
// must not block retry progress and must tolerate having no consumers.
type Notifier interface {
	RateLimitHit(ctx context.Context, event Event)
	RateLimitResolved(ctx context.Context, event SuccessEvent)
}
