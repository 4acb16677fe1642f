// Package retry executes provider operations with exponential backoff and
// broadcasts rate-limit conditions to any interested listener. Attempts are
// strictly sequential; the final error is returned to the caller unchanged.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	defaultMaxRetries        = 3
	defaultInitialDelay      = 1 * time.Second
	defaultMaxDelay          = 30 * time.Second
	defaultBackoffMultiplier = 2.0

	// Jitter spreads independent callers' retries over ±25% of the
	// exponential term.
	jitterFraction = 0.25
)

var defaultRetryableStatuses = []int{403, 429, 500, 502, 503, 504}

// Message fragments that mark an error as a transient network condition even
// when no status code is attached.
var retryableFragments = []string{"network", "timeout", "econnreset", "etimedout"}

// statusCoder is implemented by provider errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero means the default of 3; use a negative value for no retries.
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	RetryableStatuses []int

	// OnRetry is invoked after each failed attempt that will be retried,
	// with the 0-based attempt index and the delay before the next attempt.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Notifier receives rate-limit signals. Nil is fine; nobody listening
	// never affects retry behavior.
	Notifier Notifier

	// Test seams. Nil selects the real clock and random jitter.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

func (c Config) withDefaults() Config {
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = defaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = defaultBackoffMultiplier
	}
	if c.RetryableStatuses == nil {
		c.RetryableStatuses = defaultRetryableStatuses
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.jitter == nil {
		c.jitter = func() float64 {
			return (rand.Float64()*2 - 1) * jitterFraction
		}
	}
	return c
}

// Do runs op up to MaxRetries+1 times. Non-retryable failures and exhausted
// budgets surface the operation's last error as-is so callers can keep
// matching on the provider's status and message.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	rateLimited := false

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if rateLimited && cfg.Notifier != nil {
				cfg.Notifier.RateLimitResolved(ctx, SuccessEvent{
					Message:  "provider request succeeded after rate limiting",
					Attempts: attempt + 1,
				})
			}
			return result, nil
		}

		if attempt >= cfg.MaxRetries || !cfg.isRetryable(err) {
			return zero, err
		}

		delay := cfg.delayFor(attempt)

		if status := StatusOf(err); status == 403 || status == 429 {
			rateLimited = true
			if cfg.Notifier != nil {
				cfg.Notifier.RateLimitHit(ctx, Event{
					Message:    "provider rate limit hit, retrying",
					Retrying:   true,
					Attempt:    attempt + 1,
					MaxRetries: cfg.MaxRetries,
					Delay:      delay,
					Error:      ErrorInfo{Status: status, Message: err.Error()},
				})
			}
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}

		if sleepErr := cfg.sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}
}

// delayFor computes the jittered exponential delay before the attempt
// following the given 0-based attempt index, capped at MaxDelay.
func (c Config) delayFor(attempt int) time.Duration {
	base := float64(c.InitialDelay) * math.Pow(c.BackoffMultiplier, float64(attempt))
	delay := time.Duration(base + base*c.jitter())
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

func (c Config) isRetryable(err error) bool {
	if status := StatusOf(err); status != 0 {
		for _, s := range c.RetryableStatuses {
			if s == status {
				return true
			}
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// StatusOf extracts an HTTP status code from an error chain, or 0.
func StatusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
