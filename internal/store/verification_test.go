package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/store"
)

var _ = Describe("VerificationStore", func() {
	var (
		ctx context.Context
		tc  *memTracker
		s   *store.Stores
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		tc = newMemTracker()
		s = store.NewStores(tc)
		now = time.Now().UTC()
	})

	entry := func(hash string, expiresAt time.Time) model.VerificationEntry {
		return model.VerificationEntry{
			Hash:      hash,
			Sealed:    "c2VhbGVk",
			RequestID: "req-" + hash,
			Email:     hash + "@example.com",
			ExpiresAt: expiresAt,
		}
	}

	It("stores and finds an entry by hash", func() {
		stored := entry("abc123", now.Add(15*time.Minute))
		Expect(s.Verifications().Put(ctx, stored)).To(Succeed())

		found, commentID, err := s.Verifications().Find(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).NotTo(BeNil())
		Expect(commentID).NotTo(BeZero())
		Expect(found.RequestID).To(Equal(stored.RequestID))
		Expect(found.ExpiresAt).To(BeTemporally("~", stored.ExpiresAt, time.Second))
	})

	It("misses without error for an unknown hash", func() {
		found, commentID, err := s.Verifications().Find(ctx, "nope")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeNil())
		Expect(commentID).To(BeZero())
	})

	It("returns the latest entry when a hash was submitted twice", func() {
		first := entry("dup", now.Add(5*time.Minute))
		second := entry("dup", now.Add(30*time.Minute))
		second.RequestID = "req-dup-2"

		Expect(s.Verifications().Put(ctx, first)).To(Succeed())
		Expect(s.Verifications().Put(ctx, second)).To(Succeed())

		found, _, err := s.Verifications().Find(ctx, "dup")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.RequestID).To(Equal("req-dup-2"))
	})

	It("deletes a consumed entry", func() {
		Expect(s.Verifications().Put(ctx, entry("gone", now.Add(time.Minute)))).To(Succeed())

		_, commentID, err := s.Verifications().Find(ctx, "gone")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Verifications().Delete(ctx, commentID)).To(Succeed())

		found, _, err := s.Verifications().Find(ctx, "gone")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeNil())
	})

	It("purges only expired entries", func() {
		Expect(s.Verifications().Put(ctx, entry("expired-1", now.Add(-time.Minute)))).To(Succeed())
		Expect(s.Verifications().Put(ctx, entry("expired-2", now.Add(-time.Hour)))).To(Succeed())
		Expect(s.Verifications().Put(ctx, entry("fresh", now.Add(time.Hour)))).To(Succeed())

		purged, err := s.Verifications().PurgeExpired(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(purged).To(Equal(2))

		found, _, err := s.Verifications().Find(ctx, "fresh")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).NotTo(BeNil())
	})

	It("skips hand-written comments on the index issue", func() {
		def := model.KindVerification.Definition()
		issue := tc.seedIssue(def.Title, "seed", def.Labels)
		_, err := tc.CreateComment(ctx, issue.Number, "please verify me manually?")
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Verifications().Put(ctx, entry("real", now.Add(time.Minute)))).To(Succeed())

		found, _, err := s.Verifications().Find(ctx, "real")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).NotTo(BeNil())
	})
})
