package router

import (
	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/handler"
)

func AchievementRouter(rg *gin.RouterGroup, h *handler.AchievementHandler) {
	rg.GET("/:username", h.Counters)
	rg.POST("/:username/increment", h.Increment)
}
