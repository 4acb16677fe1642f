package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHub       GitHubConfig
	Wiki         WikiConfig
	Verification VerificationConfig
	Notifier     NotifierConfig
	OTel         OTelConfig
	Env          string
	Port         string
	AdminAPIKey  string
}

type GitHubConfig struct {
	Token   string
	Owner   string
	Repo    string
	BaseURL string // Optional: GitHub Enterprise Server
}

type WikiConfig struct {
	// IssueCacheTTL is how long a provisioned index issue is served from
	// memory before the next call re-searches the repository.
	IssueCacheTTL time.Duration
}

type VerificationConfig struct {
	// Secret is the hex-encoded 32-byte key used to seal verification codes.
	Secret  string
	CodeTTL time.Duration
}

type NotifierConfig struct {
	RedisURL string
	Channel  string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Load loads configuration from environment variables.
// In development it also reads a .env file from the working directory.
func Load() (Config, error) {
	if getEnv("WIKI_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:         getEnv("WIKI_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		GitHub: GitHubConfig{
			Token:   getEnv("GITHUB_TOKEN", ""),
			Owner:   getEnv("GITHUB_OWNER", ""),
			Repo:    getEnv("GITHUB_REPO", ""),
			BaseURL: getEnv("GITHUB_BASE_URL", ""),
		},
		Wiki: WikiConfig{
			IssueCacheTTL: getEnvDuration("WIKI_ISSUE_CACHE_TTL", 5*time.Second),
		},
		Verification: VerificationConfig{
			Secret:  getEnv("VERIFICATION_SECRET", ""),
			CodeTTL: getEnvDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
		},
		Notifier: NotifierConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			Channel:  getEnv("NOTIFY_CHANNEL", "wiki_rate_limit_events"),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "gitwiki"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	if cfg.GitHub.Token == "" {
		return Config{}, fmt.Errorf("GITHUB_TOKEN is required")
	}
	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return Config{}, fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required")
	}
	if cfg.Verification.Secret == "" {
		return Config{}, fmt.Errorf("VERIFICATION_SECRET is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c NotifierConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
