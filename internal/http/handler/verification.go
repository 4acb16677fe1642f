package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/http/dto"
	"gitwiki.app/server/internal/service"
)

type VerificationHandler struct {
	verifications service.VerificationService
	revealCodes   bool
}

// NewVerificationHandler builds the handler. revealCodes echoes the
// plaintext code in the response and must stay off in production.
func NewVerificationHandler(verifications service.VerificationService, revealCodes bool) *VerificationHandler {
	return &VerificationHandler{verifications: verifications, revealCodes: revealCodes}
}

func (h *VerificationHandler) Request(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RequestVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID, code, err := h.verifications.Request(ctx, req.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue verification code", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to issue verification code"})
		return
	}

	resp := dto.RequestVerificationResponse{RequestID: requestID}
	if h.revealCodes {
		resp.Code = code
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *VerificationHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConfirmVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.verifications.Confirm(ctx, req.Email, req.Code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"verified": true})
	case errors.Is(err, service.ErrCodeExpired):
		c.JSON(http.StatusGone, gin.H{"error": "verification code expired"})
	case errors.Is(err, service.ErrCodeInvalid):
		c.JSON(http.StatusForbidden, gin.H{"error": "verification code invalid"})
	default:
		slog.ErrorContext(ctx, "failed to confirm verification code", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to confirm verification code"})
	}
}
