package service

import (
	"gitwiki.app/server/core/config"
	"gitwiki.app/server/internal/retry"
	"gitwiki.app/server/internal/store"
)

type Services struct {
	stores          *store.Stores
	notifier        retry.Notifier
	verificationCfg config.VerificationConfig
}

func NewServices(stores *store.Stores, notifier retry.Notifier, verificationCfg config.VerificationConfig) *Services {
	return &Services{
		stores:          stores,
		notifier:        notifier,
		verificationCfg: verificationCfg,
	}
}

func (s *Services) Admins() AdminService {
	return NewAdminService(s.stores.Admins(), s.notifier)
}

func (s *Services) Bans() BanService {
	return NewBanService(s.stores.Bans(), s.notifier)
}

func (s *Services) Achievements() AchievementService {
	return NewAchievementService(s.stores.Achievements(), s.notifier)
}

func (s *Services) Verifications() (VerificationService, error) {
	return NewVerificationService(s.stores.Verifications(), s.notifier, s.verificationCfg)
}
