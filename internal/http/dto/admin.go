package dto

import "gitwiki.app/server/internal/model"

type AdminEntry struct {
	Username string `json:"username" binding:"required,min=1,max=39"`
	UserID   int64  `json:"user_id,omitempty"`
}

type ReplaceAdminsRequest struct {
	// Replacing with an empty list is allowed; it clears every entry.
	Admins []AdminEntry `json:"admins" binding:"dive"`
}

type AdminListResponse struct {
	Admins []AdminEntry `json:"admins"`
}

func ToAdminEntries(entries []model.AdminEntry) []AdminEntry {
	out := make([]AdminEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, AdminEntry{Username: e.Username, UserID: e.UserID})
	}
	return out
}

func FromAdminEntries(entries []AdminEntry) []model.AdminEntry {
	out := make([]model.AdminEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.AdminEntry{Username: e.Username, UserID: e.UserID})
	}
	return out
}

type BanEntry struct {
	Username string `json:"username" binding:"required,min=1,max=39"`
	UserID   int64  `json:"user_id,omitempty"`
	Reason   string `json:"reason,omitempty" binding:"max=500"`
}

type ReplaceBansRequest struct {
	Banned []BanEntry `json:"banned" binding:"dive"`
}

type BanListResponse struct {
	Banned []BanEntry `json:"banned"`
}

func ToBanEntries(entries []model.BanEntry) []BanEntry {
	out := make([]BanEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, BanEntry{Username: e.Username, UserID: e.UserID, Reason: e.Reason})
	}
	return out
}

func FromBanEntries(entries []BanEntry) []model.BanEntry {
	out := make([]model.BanEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.BanEntry{Username: e.Username, UserID: e.UserID, Reason: e.Reason})
	}
	return out
}
