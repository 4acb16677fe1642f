package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/dto"
	"gitwiki.app/server/internal/service"
	"gitwiki.app/server/internal/store"
)

type AdminHandler struct {
	admins service.AdminService
	bans   service.BanService
}

func NewAdminHandler(admins service.AdminService, bans service.BanService) *AdminHandler {
	return &AdminHandler{admins: admins, bans: bans}
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.admins.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list admins", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list admins"})
		return
	}

	c.JSON(http.StatusOK, dto.AdminListResponse{Admins: dto.ToAdminEntries(entries)})
}

func (h *AdminHandler) ReplaceAdmins(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReplaceAdminsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admins.Replace(ctx, dto.FromAdminEntries(req.Admins)); err != nil {
		if errors.Is(err, store.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "banned users cannot be admins"})
			return
		}
		slog.ErrorContext(ctx, "failed to replace admins", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to replace admins"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(req.Admins)})
}

func (h *AdminHandler) ListBans(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.bans.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list bans", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list bans"})
		return
	}

	c.JSON(http.StatusOK, dto.BanListResponse{Banned: dto.ToBanEntries(entries)})
}

func (h *AdminHandler) ReplaceBans(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReplaceBansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.bans.Replace(ctx, dto.FromBanEntries(req.Banned)); err != nil {
		slog.ErrorContext(ctx, "failed to replace bans", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to replace bans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(req.Banned)})
}
