package retry

import (
	"context"
	"time"
)

// GitHub's secondary rate limits back off harder than the generic defaults:
// start at 2s and allow waits up to a minute.
const (
	gitHubMaxRetries   = 3
	gitHubInitialDelay = 2 * time.Second
	gitHubMaxDelay     = 60 * time.Second
	gitHubMultiplier   = 2.0
)

// GitHubAPI runs op with the retry configuration tuned for the GitHub API.
func GitHubAPI[T any](
	ctx context.Context,
	notifier Notifier,
	onRetry func(attempt int, delay time.Duration, err error),
	op func(ctx context.Context) (T, error),
) (T, error) {
	return Do(ctx, Config{
		MaxRetries:        gitHubMaxRetries,
		InitialDelay:      gitHubInitialDelay,
		MaxDelay:          gitHubMaxDelay,
		BackoffMultiplier: gitHubMultiplier,
		OnRetry:           onRetry,
		Notifier:          notifier,
	}, op)
}

// GitHubAPIVoid is GitHubAPI for operations without a result.
func GitHubAPIVoid(
	ctx context.Context,
	notifier Notifier,
	onRetry func(attempt int, delay time.Duration, err error),
	op func(ctx context.Context) error,
) error {
	_, err := GitHubAPI(ctx, notifier, onRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
