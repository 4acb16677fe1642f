package router

import (
	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/handler"
)

// AdminRouter wires the admin and ban list endpoints.
// Reads are public; writes require the admin API key.
func AdminRouter(rg *gin.RouterGroup, h *handler.AdminHandler, requireKey gin.HandlerFunc) {
	rg.GET("/admins", h.ListAdmins)
	rg.GET("/bans", h.ListBans)

	guarded := rg.Group("")
	guarded.Use(requireKey)
	{
		guarded.PUT("/admins", h.ReplaceAdmins)
		guarded.PUT("/bans", h.ReplaceBans)
	}
}
