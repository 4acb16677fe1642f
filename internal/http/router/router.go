package router

import (
	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/handler"
	"gitwiki.app/server/internal/http/middleware"
	"gitwiki.app/server/internal/notify"
	"gitwiki.app/server/internal/service"
)

type RouterConfig struct {
	AdminAPIKey  string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, feed notify.Feed, cfg RouterConfig) error {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	verifications, err := services.Verifications()
	if err != nil {
		return err
	}

	v1 := router.Group("/api/v1")
	{
		verificationHandler := handler.NewVerificationHandler(verifications, !cfg.IsProduction)
		VerificationRouter(v1.Group("/verification"), verificationHandler)

		adminHandler := handler.NewAdminHandler(services.Admins(), services.Bans())
		AdminRouter(v1, adminHandler, middleware.RequireAdminKey(cfg.AdminAPIKey))

		achievementHandler := handler.NewAchievementHandler(services.Achievements())
		AchievementRouter(v1.Group("/achievements"), achievementHandler)

		notificationHandler := handler.NewNotificationHandler(feed)
		NotificationRouter(v1.Group("/notifications"), notificationHandler)
	}

	return nil
}
