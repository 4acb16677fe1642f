package model

import "time"

// Kind identifies a category of index issue. Each kind maps to exactly one
// issue per repository, addressed by a canonical title and label set.
type Kind string

const (
	KindVerification Kind = "verification"
	KindAdmins       Kind = "admins"
	KindBans         Kind = "bans"
	KindAchievements Kind = "achievements"
)

// Definition is the canonical identity of a kind's index issue. The title is
// authoritative when several issues carry the same labels.
type Definition struct {
	Kind   Kind
	Title  string
	Labels []string
}

var definitions = map[Kind]Definition{
	KindVerification: {
		Kind:   KindVerification,
		Title:  "[Email Verification]",
		Labels: []string{"email-verification", "automated"},
	},
	KindAdmins: {
		Kind:   KindAdmins,
		Title:  "[Wiki Admins]",
		Labels: []string{"wiki-admins", "automated"},
	},
	KindBans: {
		Kind:   KindBans,
		Title:  "[Wiki Bans]",
		Labels: []string{"wiki-bans", "automated"},
	},
	KindAchievements: {
		Kind:   KindAchievements,
		Title:  "[Achievement Cache]",
		Labels: []string{"achievement-cache", "automated"},
	},
}

func (k Kind) Definition() Definition {
	return definitions[k]
}

func (k Kind) Valid() bool {
	_, ok := definitions[k]
	return ok
}

// AdminEntry identifies a wiki administrator. UserID is the provider's
// immutable numeric account ID; Username is the mutable display name.
// UserID 0 means the ID is unknown (legacy entries).
type AdminEntry struct {
	Username string `json:"username"`
	UserID   int64  `json:"userId,omitempty"`
}

type BanEntry struct {
	Username string `json:"username"`
	UserID   int64  `json:"userId,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type AdminList struct {
	Admins []AdminEntry `json:"admins"`
}

type BanList struct {
	Banned []BanEntry `json:"banned"`
}

// VerificationEntry is one issued verification code, stored as a single
// comment on the verification index issue. Hash keys the entry; Sealed is
// the AES-GCM-sealed code for the mailer.
type VerificationEntry struct {
	Hash      string    `json:"hash"`
	Sealed    string    `json:"sealed"`
	RequestID string    `json:"requestId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e VerificationEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
