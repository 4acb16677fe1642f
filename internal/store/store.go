// Package store performs read-modify-write operations against index issue
// bodies and comments. Operations carry no internal retry; callers wrap the
// whole sequence with the retry engine. Concurrent writers to one record are
// last-writer-wins: there is no optimistic-concurrency token on issue bodies
// and the accepted risk is documented in DESIGN.md.
package store

import (
	"errors"
	"strings"

	"gitwiki.app/server/internal/provision"
	"gitwiki.app/server/internal/tracker"
)

var (
	// ErrForbidden marks a business-rule rejection (banned candidate,
	// missing permission record). Never retried.
	ErrForbidden = errors.New("forbidden")
)

// Stores owns one provisioner per tracker-client configuration. Distinct
// configurations (owner/repo/token) get distinct Stores and therefore
// independently expiring issue caches.
type Stores struct {
	tracker tracker.Client
	prov    *provision.Provisioner
}

func NewStores(tc tracker.Client, opts ...provision.Option) *Stores {
	return &Stores{
		tracker: tc,
		prov:    provision.New(tc, opts...),
	}
}

func (s *Stores) Admins() AdminStore {
	return NewAdminStore(s.tracker, s.prov, s.Bans())
}

func (s *Stores) Bans() BanStore {
	return NewBanStore(s.tracker, s.prov)
}

func (s *Stores) Achievements() AchievementStore {
	return NewAchievementStore(s.tracker, s.prov)
}

func (s *Stores) Verifications() VerificationStore {
	return NewVerificationStore(s.tracker, s.prov)
}

// identityMatch compares two account references. The immutable numeric ID
// wins when both sides carry one (handles renamed accounts); otherwise the
// comparison falls back to case-insensitive usernames.
func identityMatch(username string, userID int64, otherName string, otherID int64) bool {
	if userID != 0 && otherID != 0 {
		return userID == otherID
	}
	return username != "" && strings.EqualFold(username, otherName)
}
