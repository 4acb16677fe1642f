package store_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/record"
	"gitwiki.app/server/internal/store"
)

var _ = Describe("AchievementStore", func() {
	var (
		ctx context.Context
		tc  *memTracker
		s   *store.Stores
	)

	BeforeEach(func() {
		ctx = context.Background()
		tc = newMemTracker()
		s = store.NewStores(tc)
	})

	It("increments a counter from zero and accumulates", func() {
		value, err := s.Achievements().Increment(ctx, "alice", "edits")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(int64(1)))

		value, err = s.Achievements().Increment(ctx, "alice", "edits")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(int64(2)))

		counters, err := s.Achievements().Counters(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(counters).To(Equal(map[string]int64{"edits": 2}))
	})

	It("keeps counters per user", func() {
		_, err := s.Achievements().Increment(ctx, "alice", "edits")
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Achievements().Increment(ctx, "bob", "uploads")
		Expect(err).NotTo(HaveOccurred())

		counters, err := s.Achievements().Counters(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(counters).To(HaveKey("edits"))
		Expect(counters).NotTo(HaveKey("uploads"))
	})

	It("preserves payload keys written by other writers", func() {
		def := model.KindAchievements.Definition()
		payload := map[string]json.RawMessage{
			"users":      json.RawMessage(`{"alice":{"edits":4}}`),
			"generation": json.RawMessage(`17`),
		}
		body, err := record.Render(record.Preamble(def), payload)
		Expect(err).NotTo(HaveOccurred())
		issue := tc.seedIssue(def.Title, body, def.Labels)

		value, err := s.Achievements().Increment(ctx, "alice", "edits")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(int64(5)))

		result := record.Parse(tc.issueBody(issue.Number))
		Expect(result.Status).To(Equal(record.StatusOK))

		var written map[string]json.RawMessage
		Expect(result.Decode(&written)).To(Succeed())
		Expect(written).To(HaveKey("generation"))
		Expect(string(written["generation"])).To(Equal("17"))
	})

	It("starts fresh on a corrupt payload", func() {
		def := model.KindAchievements.Definition()
		tc.seedIssue(def.Title, "```json\n{broken\n```", def.Labels)

		value, err := s.Achievements().Increment(ctx, "alice", "edits")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(int64(1)))
	})
})
