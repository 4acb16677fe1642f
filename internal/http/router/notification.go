package router

import (
	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/handler"
)

func NotificationRouter(rg *gin.RouterGroup, h *handler.NotificationHandler) {
	rg.GET("/stream", h.Stream)
}
