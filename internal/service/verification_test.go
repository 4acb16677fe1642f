package service

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitwiki.app/server/core/config"
	"gitwiki.app/server/internal/model"
)

const testSecret = "6368616e676520746869732070617373776f726420746f206120736563726574"

var _ = Describe("VerificationService", func() {
	var (
		ctx    context.Context
		store  *mockVerificationStore
		svc    *verificationService
		stored []model.VerificationEntry
		base   time.Time
	)

	newService := func() *verificationService {
		s, err := NewVerificationService(store, nil, config.VerificationConfig{
			Secret:  testSecret,
			CodeTTL: 15 * time.Minute,
		})
		Expect(err).NotTo(HaveOccurred())
		impl := s.(*verificationService)
		impl.now = func() time.Time { return base }
		impl.codeFn = func() (string, error) { return "12345678", nil }
		impl.newID = func() string { return "req-1" }
		return impl
	}

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		stored = nil
		store = &mockVerificationStore{
			PutFunc: func(ctx context.Context, entry model.VerificationEntry) error {
				stored = append(stored, entry)
				return nil
			},
		}
		svc = newService()
	})

	Describe("Request", func() {
		It("stores a sealed entry and returns the plaintext code", func() {
			requestID, code, err := svc.Request(ctx, "User@Example.com")

			Expect(err).NotTo(HaveOccurred())
			Expect(requestID).To(Equal("req-1"))
			Expect(code).To(Equal("12345678"))
			Expect(stored).To(HaveLen(1))

			entry := stored[0]
			Expect(entry.Email).To(Equal("user@example.com"))
			Expect(entry.Hash).To(Equal(codeHash("user@example.com", "12345678")))
			Expect(entry.ExpiresAt).To(Equal(base.Add(15 * time.Minute)))
			Expect(entry.Sealed).NotTo(ContainSubstring("12345678"))

			opened, err := svc.open(entry.Sealed)
			Expect(err).NotTo(HaveOccurred())
			Expect(opened).To(Equal("12345678"))
		})

		It("propagates store failures", func() {
			store.PutFunc = func(ctx context.Context, entry model.VerificationEntry) error {
				return errors.New("issue body rejected")
			}

			_, _, err := svc.Request(ctx, "user@example.com")
			Expect(err).To(MatchError(ContainSubstring("issue body rejected")))
		})
	})

	Describe("Confirm", func() {
		var deleted []int64

		seed := func(email, code string, expiresAt time.Time) {
			sealed, err := svc.seal(code)
			Expect(err).NotTo(HaveOccurred())
			entry := &model.VerificationEntry{
				Hash:      codeHash(email, code),
				Sealed:    sealed,
				RequestID: "req-1",
				Email:     email,
				ExpiresAt: expiresAt,
			}
			store.FindFunc = func(ctx context.Context, hash string) (*model.VerificationEntry, int64, error) {
				if hash == entry.Hash {
					return entry, 777, nil
				}
				return nil, 0, nil
			}
		}

		BeforeEach(func() {
			deleted = nil
			store.DeleteFunc = func(ctx context.Context, commentID int64) error {
				deleted = append(deleted, commentID)
				return nil
			}
		})

		It("accepts the right code and consumes the entry", func() {
			seed("user@example.com", "12345678", base.Add(time.Minute))

			Expect(svc.Confirm(ctx, "User@Example.com ", "12345678")).To(Succeed())
			Expect(deleted).To(Equal([]int64{777}))
		})

		It("rejects a code that was never issued", func() {
			store.FindFunc = func(ctx context.Context, hash string) (*model.VerificationEntry, int64, error) {
				return nil, 0, nil
			}

			Expect(svc.Confirm(ctx, "user@example.com", "00000000")).To(MatchError(ErrCodeInvalid))
			Expect(deleted).To(BeEmpty())
		})

		It("rejects and consumes an expired code", func() {
			seed("user@example.com", "12345678", base.Add(-time.Second))

			Expect(svc.Confirm(ctx, "user@example.com", "12345678")).To(MatchError(ErrCodeExpired))
			Expect(deleted).To(Equal([]int64{777}))
		})

		It("rejects when the sealed value cannot be opened", func() {
			seed("user@example.com", "12345678", base.Add(time.Minute))
			other, err := NewVerificationService(store, nil, config.VerificationConfig{
				Secret:  hex.EncodeToString(make([]byte, 32)),
				CodeTTL: 15 * time.Minute,
			})
			Expect(err).NotTo(HaveOccurred())
			impl := other.(*verificationService)
			impl.now = func() time.Time { return base }

			Expect(impl.Confirm(ctx, "user@example.com", "12345678")).To(MatchError(ErrCodeInvalid))
		})

		It("still succeeds when consuming the entry fails", func() {
			seed("user@example.com", "12345678", base.Add(time.Minute))
			store.DeleteFunc = func(ctx context.Context, commentID int64) error {
				return errors.New("comment already gone")
			}

			Expect(svc.Confirm(ctx, "user@example.com", "12345678")).To(Succeed())
		})
	})

	Describe("NewVerificationService", func() {
		It("rejects a secret that is not 32 bytes", func() {
			_, err := NewVerificationService(store, nil, config.VerificationConfig{
				Secret:  "abcd",
				CodeTTL: time.Minute,
			})
			Expect(err).To(MatchError(ContainSubstring("32 bytes")))
		})

		It("rejects a secret that is not hex", func() {
			_, err := NewVerificationService(store, nil, config.VerificationConfig{
				Secret:  "not-hex!",
				CodeTTL: time.Minute,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("randomCode", func() {
		It("produces eight digits", func() {
			for i := 0; i < 20; i++ {
				code, err := randomCode()
				Expect(err).NotTo(HaveOccurred())
				Expect(code).To(MatchRegexp(`^\d{8}$`))
			}
		})
	})
})
