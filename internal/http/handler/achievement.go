package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/dto"
	"gitwiki.app/server/internal/service"
)

type AchievementHandler struct {
	achievements service.AchievementService
}

func NewAchievementHandler(achievements service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

func (h *AchievementHandler) Increment(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	var req dto.IncrementAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value, err := h.achievements.Increment(ctx, username, req.Metric)
	if err != nil {
		slog.ErrorContext(ctx, "failed to increment achievement",
			"username", username, "metric", req.Metric, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to increment achievement"})
		return
	}

	c.JSON(http.StatusOK, dto.IncrementAchievementResponse{
		Username: username,
		Metric:   req.Metric,
		Value:    value,
	})
}

func (h *AchievementHandler) Counters(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	counters, err := h.achievements.Counters(ctx, username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read achievements",
			"username", username, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read achievements"})
		return
	}

	c.JSON(http.StatusOK, dto.AchievementCountersResponse{
		Username: username,
		Counters: counters,
	})
}
