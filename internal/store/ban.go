package store

import (
	"context"
	"fmt"
	"log/slog"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/provision"
	"gitwiki.app/server/internal/record"
	"gitwiki.app/server/internal/tracker"
)

type BanStore interface {
	List(ctx context.Context) ([]model.BanEntry, error)
	Replace(ctx context.Context, entries []model.BanEntry) error
	IsBanned(ctx context.Context, username string, userID int64) (bool, error)
}

type banStore struct {
	tracker tracker.Client
	prov    *provision.Provisioner
}

func NewBanStore(tc tracker.Client, prov *provision.Provisioner) BanStore {
	return &banStore{tracker: tc, prov: prov}
}

// List fails open: a missing or corrupt payload reads as an empty ban list.
func (s *banStore) List(ctx context.Context) ([]model.BanEntry, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindBans)
	if err != nil {
		return nil, fmt.Errorf("provisioning ban list: %w", err)
	}

	result := record.Parse(issue.Body)
	switch result.Status {
	case record.StatusEmpty:
		return nil, nil
	case record.StatusMalformed:
		slog.WarnContext(ctx, "ban list payload malformed, treating as empty",
			"issue_number", issue.Number)
		return nil, nil
	}

	var list model.BanList
	if err := result.Decode(&list); err != nil {
		slog.WarnContext(ctx, "ban list payload undecodable, treating as empty",
			"issue_number", issue.Number, "error", err)
		return nil, nil
	}
	return list.Banned, nil
}

func (s *banStore) Replace(ctx context.Context, entries []model.BanEntry) error {
	issue, err := s.prov.GetOrCreate(ctx, model.KindBans)
	if err != nil {
		return fmt.Errorf("provisioning ban list: %w", err)
	}

	def := model.KindBans.Definition()
	body, err := record.Render(record.Preamble(def), model.BanList{Banned: entries})
	if err != nil {
		return fmt.Errorf("rendering ban list: %w", err)
	}

	updated, err := s.tracker.UpdateIssueBody(ctx, issue.Number, body)
	if err != nil {
		return fmt.Errorf("updating ban list: %w", err)
	}
	s.prov.Refresh(model.KindBans, updated)
	return nil
}

func (s *banStore) IsBanned(ctx context.Context, username string, userID int64) (bool, error) {
	banned, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range banned {
		if identityMatch(username, userID, b.Username, b.UserID) {
			return true, nil
		}
	}
	return false, nil
}
