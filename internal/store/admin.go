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

type AdminStore interface {
	List(ctx context.Context) ([]model.AdminEntry, error)
	Replace(ctx context.Context, entries []model.AdminEntry) error
	// IsAdmin is the permission-check read: unlike List it treats a
	// missing or corrupt admin record as Forbidden, not as empty.
	IsAdmin(ctx context.Context, username string, userID int64) (bool, error)
}

type adminStore struct {
	tracker tracker.Client
	prov    *provision.Provisioner
	bans    BanStore
}

func NewAdminStore(tc tracker.Client, prov *provision.Provisioner, bans BanStore) AdminStore {
	return &adminStore{tracker: tc, prov: prov, bans: bans}
}

// List fails open: a missing or corrupt payload reads as an empty admin list.
func (s *adminStore) List(ctx context.Context) ([]model.AdminEntry, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindAdmins)
	if err != nil {
		return nil, fmt.Errorf("provisioning admin list: %w", err)
	}

	result := record.Parse(issue.Body)
	switch result.Status {
	case record.StatusEmpty:
		return nil, nil
	case record.StatusMalformed:
		slog.WarnContext(ctx, "admin list payload malformed, treating as empty",
			"issue_number", issue.Number)
		return nil, nil
	}

	var list model.AdminList
	if err := result.Decode(&list); err != nil {
		slog.WarnContext(ctx, "admin list payload undecodable, treating as empty",
			"issue_number", issue.Number, "error", err)
		return nil, nil
	}
	return list.Admins, nil
}

// Replace rejects the whole update if any candidate appears on the ban list;
// no mutating call is issued for a rejected update.
func (s *adminStore) Replace(ctx context.Context, entries []model.AdminEntry) error {
	banned, err := s.bans.List(ctx)
	if err != nil {
		return fmt.Errorf("reading ban list: %w", err)
	}

	for _, candidate := range entries {
		for _, b := range banned {
			if identityMatch(candidate.Username, candidate.UserID, b.Username, b.UserID) {
				return fmt.Errorf("%w: %q is on the ban list", ErrForbidden, candidate.Username)
			}
		}
	}

	issue, err := s.prov.GetOrCreate(ctx, model.KindAdmins)
	if err != nil {
		return fmt.Errorf("provisioning admin list: %w", err)
	}

	def := model.KindAdmins.Definition()
	body, err := record.Render(record.Preamble(def), model.AdminList{Admins: entries})
	if err != nil {
		return fmt.Errorf("rendering admin list: %w", err)
	}

	updated, err := s.tracker.UpdateIssueBody(ctx, issue.Number, body)
	if err != nil {
		return fmt.Errorf("updating admin list: %w", err)
	}
	s.prov.Refresh(model.KindAdmins, updated)

	slog.InfoContext(ctx, "admin list replaced",
		"issue_number", issue.Number, "admin_count", len(entries))
	return nil
}

func (s *adminStore) IsAdmin(ctx context.Context, username string, userID int64) (bool, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindAdmins)
	if err != nil {
		return false, fmt.Errorf("provisioning admin list: %w", err)
	}

	result := record.Parse(issue.Body)
	if result.Status != record.StatusOK {
		// A permission check with no record to check against must deny.
		return false, fmt.Errorf("%w: admin list record unavailable", ErrForbidden)
	}

	var list model.AdminList
	if err := result.Decode(&list); err != nil {
		return false, fmt.Errorf("%w: admin list record unreadable", ErrForbidden)
	}

	for _, a := range list.Admins {
		if identityMatch(username, userID, a.Username, a.UserID) {
			return true, nil
		}
	}
	return false, nil
}
