package service

import (
	"context"
	"fmt"

	"gitwiki.app/server/internal/retry"
	"gitwiki.app/server/internal/store"
)

type AchievementService interface {
	Increment(ctx context.Context, username, metric string) (int64, error)
	Counters(ctx context.Context, username string) (map[string]int64, error)
}

type achievementService struct {
	achievements store.AchievementStore
	notifier     retry.Notifier
}

func NewAchievementService(achievements store.AchievementStore, notifier retry.Notifier) AchievementService {
	return &achievementService{achievements: achievements, notifier: notifier}
}

func (s *achievementService) Increment(ctx context.Context, username, metric string) (int64, error) {
	value, err := retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) (int64, error) {
		return s.achievements.Increment(ctx, username, metric)
	})
	if err != nil {
		return 0, fmt.Errorf("incrementing %q for %s: %w", metric, username, err)
	}
	return value, nil
}

func (s *achievementService) Counters(ctx context.Context, username string) (map[string]int64, error) {
	return retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) (map[string]int64, error) {
		return s.achievements.Counters(ctx, username)
	})
}
