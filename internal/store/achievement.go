package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/provision"
	"gitwiki.app/server/internal/record"
	"gitwiki.app/server/internal/tracker"
)

type AchievementStore interface {
	// Increment bumps a per-user counter and returns the new value.
	Increment(ctx context.Context, username, metric string) (int64, error)
	Counters(ctx context.Context, username string) (map[string]int64, error)
}

type achievementStore struct {
	tracker tracker.Client
	prov    *provision.Provisioner
}

func NewAchievementStore(tc tracker.Client, prov *provision.Provisioner) AchievementStore {
	return &achievementStore{tracker: tc, prov: prov}
}

// The payload keeps user counters under "users" but is read and written as a
// raw key map so fields added by other writers survive the round trip.
type achievementPayload map[string]json.RawMessage

type userCounters map[string]map[string]int64

func (s *achievementStore) Increment(ctx context.Context, username, metric string) (int64, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindAchievements)
	if err != nil {
		return 0, fmt.Errorf("provisioning achievement cache: %w", err)
	}

	payload, users := s.decode(ctx, issue.Body, issue.Number)

	if users[username] == nil {
		users[username] = make(map[string]int64)
	}
	users[username][metric]++
	value := users[username][metric]

	encoded, err := json.Marshal(users)
	if err != nil {
		return 0, fmt.Errorf("encoding counters: %w", err)
	}
	payload["users"] = encoded

	def := model.KindAchievements.Definition()
	body, err := record.Render(record.Preamble(def), payload)
	if err != nil {
		return 0, fmt.Errorf("rendering achievement cache: %w", err)
	}

	updated, err := s.tracker.UpdateIssueBody(ctx, issue.Number, body)
	if err != nil {
		return 0, fmt.Errorf("updating achievement cache: %w", err)
	}
	s.prov.Refresh(model.KindAchievements, updated)

	return value, nil
}

func (s *achievementStore) Counters(ctx context.Context, username string) (map[string]int64, error) {
	issue, err := s.prov.GetOrCreate(ctx, model.KindAchievements)
	if err != nil {
		return nil, fmt.Errorf("provisioning achievement cache: %w", err)
	}

	_, users := s.decode(ctx, issue.Body, issue.Number)
	if users[username] == nil {
		return map[string]int64{}, nil
	}
	return users[username], nil
}

// decode fails open to an empty cache on missing or corrupt payloads.
func (s *achievementStore) decode(ctx context.Context, body string, issueNumber int) (achievementPayload, userCounters) {
	payload := achievementPayload{}
	users := userCounters{}

	result := record.Parse(body)
	if result.Status != record.StatusOK {
		if result.Status == record.StatusMalformed {
			slog.WarnContext(ctx, "achievement payload malformed, starting fresh",
				"issue_number", issueNumber)
		}
		return payload, users
	}

	if err := result.Decode(&payload); err != nil {
		slog.WarnContext(ctx, "achievement payload undecodable, starting fresh",
			"issue_number", issueNumber, "error", err)
		return achievementPayload{}, users
	}

	if raw, ok := payload["users"]; ok {
		if err := json.Unmarshal(raw, &users); err != nil {
			slog.WarnContext(ctx, "achievement counters undecodable, starting fresh",
				"issue_number", issueNumber, "error", err)
			users = userCounters{}
		}
	}

	return payload, users
}
