package service

import (
	"context"
	"fmt"
	"log/slog"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/retry"
	"gitwiki.app/server/internal/store"
)

type AdminService interface {
	List(ctx context.Context) ([]model.AdminEntry, error)
	Replace(ctx context.Context, entries []model.AdminEntry) error
	IsAdmin(ctx context.Context, username string, userID int64) (bool, error)
}

type adminService struct {
	admins   store.AdminStore
	notifier retry.Notifier
}

func NewAdminService(admins store.AdminStore, notifier retry.Notifier) AdminService {
	return &adminService{admins: admins, notifier: notifier}
}

func (s *adminService) List(ctx context.Context) ([]model.AdminEntry, error) {
	return retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) ([]model.AdminEntry, error) {
		return s.admins.List(ctx)
	})
}

func (s *adminService) Replace(ctx context.Context, entries []model.AdminEntry) error {
	if err := retry.GitHubAPIVoid(ctx, s.notifier, nil, func(ctx context.Context) error {
		return s.admins.Replace(ctx, entries)
	}); err != nil {
		return fmt.Errorf("replacing admin list: %w", err)
	}

	slog.InfoContext(ctx, "admin list replaced", "count", len(entries))
	return nil
}

func (s *adminService) IsAdmin(ctx context.Context, username string, userID int64) (bool, error) {
	return retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) (bool, error) {
		return s.admins.IsAdmin(ctx, username, userID)
	})
}

type BanService interface {
	List(ctx context.Context) ([]model.BanEntry, error)
	Replace(ctx context.Context, entries []model.BanEntry) error
	IsBanned(ctx context.Context, username string, userID int64) (bool, error)
}

type banService struct {
	bans     store.BanStore
	notifier retry.Notifier
}

func NewBanService(bans store.BanStore, notifier retry.Notifier) BanService {
	return &banService{bans: bans, notifier: notifier}
}

func (s *banService) List(ctx context.Context) ([]model.BanEntry, error) {
	return retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) ([]model.BanEntry, error) {
		return s.bans.List(ctx)
	})
}

func (s *banService) Replace(ctx context.Context, entries []model.BanEntry) error {
	if err := retry.GitHubAPIVoid(ctx, s.notifier, nil, func(ctx context.Context) error {
		return s.bans.Replace(ctx, entries)
	}); err != nil {
		return fmt.Errorf("replacing ban list: %w", err)
	}

	slog.InfoContext(ctx, "ban list replaced", "count", len(entries))
	return nil
}

func (s *banService) IsBanned(ctx context.Context, username string, userID int64) (bool, error) {
	return retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) (bool, error) {
		return s.bans.IsBanned(ctx, username, userID)
	})
}
