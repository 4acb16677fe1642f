package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"gitwiki.app/server/common/id"
	"gitwiki.app/server/common/logger"
	"gitwiki.app/server/common/otel"
	"gitwiki.app/server/core/config"
	"gitwiki.app/server/internal/http/middleware"
	httprouter "gitwiki.app/server/internal/http/router"
	"gitwiki.app/server/internal/notify"
	"gitwiki.app/server/internal/provision"
	"gitwiki.app/server/internal/service"
	"gitwiki.app/server/internal/store"
	"gitwiki.app/server/internal/tracker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "wiki server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	trackerClient, err := tracker.NewGitHubClient(cfg.GitHub)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create issue tracker client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "issue tracker configured",
		"owner", cfg.GitHub.Owner, "repo", cfg.GitHub.Repo)

	notifier := notify.NewLogNotifier(slog.Default())
	var feed notify.Feed
	var redisClient *redis.Client

	if cfg.Notifier.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Notifier.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "redis connected", "channel", cfg.Notifier.Channel)

		notifier = notify.NewMulti(
			notifier,
			notify.NewRedisNotifier(redisClient, cfg.Notifier.Channel, slog.Default()),
		)
		feed = notify.NewRedisFeed(redisClient, cfg.Notifier.Channel, slog.Default())
	}

	stores := store.NewStores(trackerClient, provision.WithCacheTTL(cfg.Wiki.IssueCacheTTL))
	services := service.NewServices(stores, notifier, cfg.Verification)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := setupRouter(cfg, services, feed)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up routes", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.ErrorContext(shutdownCtx, "redis shutdown error", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, feed notify.Feed) (*gin.Engine, error) {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	if err := httprouter.SetupRoutes(router, services, feed, httprouter.RouterConfig{
		AdminAPIKey:  cfg.AdminAPIKey,
		IsProduction: cfg.IsProduction(),
	}); err != nil {
		return nil, err
	}

	return router, nil
}
