package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitwiki.app/server/internal/notify"
)

type NotificationHandler struct {
	feed notify.Feed
}

// NewNotificationHandler builds the SSE handler. A nil feed means the
// deployment runs without Redis and the stream endpoint reports 503.
func NewNotificationHandler(feed notify.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

func (h *NotificationHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notification stream not configured"})
		return
	}

	msgs, release, err := h.feed.Subscribe(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to notifications", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notification stream unavailable"})
		return
	}
	defer release()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			data, err := json.Marshal(msg)
			if err != nil {
				slog.WarnContext(ctx, "failed to encode notification", "error", err)
				return true
			}
			c.SSEvent(msg.Type, string(data))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
