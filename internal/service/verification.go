package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"gitwiki.app/server/common/id"
	"gitwiki.app/server/core/config"
	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/retry"
	"gitwiki.app/server/internal/store"
)

var (
	ErrCodeInvalid = errors.New("verification code invalid")
	ErrCodeExpired = errors.New("verification code expired")
)

const codeDigits = 8

type VerificationService interface {
	// Request issues a fresh code for email and stores its sealed form.
	// The plaintext code is returned for the mailer; it is never logged.
	Request(ctx context.Context, email string) (requestID, code string, err error)
	Confirm(ctx context.Context, email, code string) error
	PurgeExpired(ctx context.Context) (int, error)
}

type verificationService struct {
	store    store.VerificationStore
	notifier retry.Notifier
	secret   []byte
	ttl      time.Duration

	now    func() time.Time
	codeFn func() (string, error)
	newID  func() string
}

func NewVerificationService(vs store.VerificationStore, notifier retry.Notifier, cfg config.VerificationConfig) (VerificationService, error) {
	secret, err := hex.DecodeString(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("decoding verification secret: %w", err)
	}
	if len(secret) != 32 {
		return nil, fmt.Errorf("verification secret must be 32 bytes, got %d", len(secret))
	}

	return &verificationService{
		store:    vs,
		notifier: notifier,
		secret:   secret,
		ttl:      cfg.CodeTTL,
		now:      time.Now,
		codeFn:   randomCode,
		newID:    id.NewString,
	}, nil
}

func (s *verificationService) Request(ctx context.Context, email string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	code, err := s.codeFn()
	if err != nil {
		return "", "", fmt.Errorf("generating code: %w", err)
	}

	sealed, err := s.seal(code)
	if err != nil {
		return "", "", fmt.Errorf("sealing code: %w", err)
	}

	entry := model.VerificationEntry{
		Hash:      codeHash(email, code),
		Sealed:    sealed,
		RequestID: s.newID(),
		Email:     email,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := retry.GitHubAPIVoid(ctx, s.notifier, nil, func(ctx context.Context) error {
		return s.store.Put(ctx, entry)
	}); err != nil {
		return "", "", fmt.Errorf("storing verification code: %w", err)
	}

	slog.InfoContext(ctx, "verification code issued",
		"request_id", entry.RequestID, "expires_at", entry.ExpiresAt)
	return entry.RequestID, code, nil
}

func (s *verificationService) Confirm(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash := codeHash(email, strings.TrimSpace(code))

	found, err := retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) (lookupResult, error) {
		e, cid, err := s.store.Find(ctx, hash)
		if err != nil {
			return lookupResult{}, err
		}
		return lookupResult{entry: e, commentID: cid}, nil
	})
	if err != nil {
		return fmt.Errorf("looking up verification code: %w", err)
	}

	if found.entry == nil {
		return ErrCodeInvalid
	}

	if found.entry.Expired(s.now()) {
		// Consume the dead entry so the index doesn't accumulate.
		s.consume(ctx, found.commentID)
		return ErrCodeExpired
	}

	opened, err := s.open(found.entry.Sealed)
	if err != nil || !hmac.Equal([]byte(opened), []byte(strings.TrimSpace(code))) {
		return ErrCodeInvalid
	}

	s.consume(ctx, found.commentID)
	slog.InfoContext(ctx, "verification code confirmed", "request_id", found.entry.RequestID)
	return nil
}

type lookupResult struct {
	entry     *model.VerificationEntry
	commentID int64
}

func (s *verificationService) PurgeExpired(ctx context.Context) (int, error) {
	return retry.GitHubAPI(ctx, s.notifier, nil, func(ctx context.Context) (int, error) {
		return s.store.PurgeExpired(ctx, s.now())
	})
}

// consume is best-effort: a leftover entry expires on its own.
func (s *verificationService) consume(ctx context.Context, commentID int64) {
	if commentID == 0 {
		return
	}
	if err := retry.GitHubAPIVoid(ctx, s.notifier, nil, func(ctx context.Context) error {
		return s.store.Delete(ctx, commentID)
	}); err != nil {
		slog.WarnContext(ctx, "failed to consume verification entry",
			"comment_id", commentID, "error", err)
	}
}

func (s *verificationService) seal(code string) (string, error) {
	block, err := aes.NewCipher(s.secret)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(code), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *verificationService) open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(s.secret)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("sealed value too short")
	}

	plain, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func codeHash(email, code string) string {
	sum := sha256.Sum256([]byte(email + "|" + code))
	return hex.EncodeToString(sum[:])
}

func randomCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
