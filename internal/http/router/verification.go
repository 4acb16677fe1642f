package router

import (
	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/handler"
)

func VerificationRouter(rg *gin.RouterGroup, h *handler.VerificationHandler) {
	rg.POST("/request", h.Request)
	rg.POST("/confirm", h.Confirm)
}
