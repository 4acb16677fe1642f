package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/provision"
	"gitwiki.app/server/internal/record"
	"gitwiki.app/server/internal/tracker"
)

// Verification codes are high churn, so each code is one comment on the
// verification index issue instead of a rewrite of the whole body. Comments
// are deleted on consume, which keeps concurrent requests from contending on
// a single growing payload.
type VerificationStore interface {
	Put(ctx context.Context, entry model.VerificationEntry) error
	// Find returns the entry matching hash and the comment ID holding it.
	// A miss is (nil, 0, nil): not finding a code is a domain outcome,
	// not a provider failure.
	Find(ctx context.Context, hash string) (*model.VerificationEntry, int64, error)
	Delete(ctx context.Context, commentID int64) error
	// PurgeExpired removes entries past their expiry, returning the count.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

type verificationStore struct {
	tracker tracker.Client
	prov    *provision.Provisioner
}

func NewVerificationStore(tc tracker.Client, prov *provision.Provisioner) VerificationStore {
	return &verificationStore{tracker: tc, prov: prov}
}

func (s *verificationStore) Put(ctx context.Context, entry model.VerificationEntry) error {
	issue, err := s.prov.GetOrCreate(ctx, model.KindVerification)
	if err != nil {
		return fmt.Errorf("provisioning verification index: %w", err)
	}

	body, err := record.Render("", entry)
	if err != nil {
		return fmt.Errorf("rendering verification entry: %w", err)
	}

	if _, err := s.tracker.CreateComment(ctx, issue.Number, body); err != nil {
		return fmt.Errorf("storing verification entry: %w", err)
	}
	return nil
}

func (s *verificationStore) Find(ctx context.Context, hash string) (*model.VerificationEntry, int64, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindVerification)
	if err != nil {
		return nil, 0, fmt.Errorf("provisioning verification index: %w", err)
	}

	comments, err := s.tracker.ListComments(ctx, issue.Number)
	if err != nil {
		return nil, 0, fmt.Errorf("listing verification entries: %w", err)
	}

	// Walk newest-last so a re-submitted code wins with its latest entry.
	var found *model.VerificationEntry
	var commentID int64
	for _, comment := range comments {
		entry, ok := decodeEntry(ctx, comment)
		if !ok {
			continue
		}
		if entry.Hash == hash {
			e := entry
			found = &e
			commentID = comment.ID
		}
	}

	if found == nil {
		return nil, 0, nil
	}
	return found, commentID, nil
}

func (s *verificationStore) Delete(ctx context.Context, commentID int64) error {
	if err := s.tracker.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("deleting verification entry: %w", err)
	}
	return nil
}

func (s *verificationStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindVerification)
	if err != nil {
		return 0, fmt.Errorf("provisioning verification index: %w", err)
	}

	comments, err := s.tracker.ListComments(ctx, issue.Number)
	if err != nil {
		return 0, fmt.Errorf("listing verification entries: %w", err)
	}

	purged := 0
	for _, comment := range comments {
		entry, ok := decodeEntry(ctx, comment)
		if !ok || !entry.Expired(now) {
			continue
		}
		if err := s.tracker.DeleteComment(ctx, comment.ID); err != nil {
			return purged, fmt.Errorf("purging verification entry: %w", err)
		}
		purged++
	}

	return purged, nil
}

// decodeEntry skips comments that are not well-formed entries (someone
// commented by hand before the issue was locked, or the format moved on).
func decodeEntry(ctx context.Context, comment model.Comment) (model.VerificationEntry, bool) {
	result := record.Parse(comment.Body)
	if result.Status != record.StatusOK {
		return model.VerificationEntry{}, false
	}

	var entry model.VerificationEntry
	if err := result.Decode(&entry); err != nil {
		slog.DebugContext(ctx, "skipping undecodable verification comment",
			"comment_id", comment.ID, "error", err)
		return model.VerificationEntry{}, false
	}
	if entry.Hash == "" {
		return model.VerificationEntry{}, false
	}
	return entry, true
}
