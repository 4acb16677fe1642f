package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"gitwiki.app/server/common/id"
	"gitwiki.app/server/internal/retry"
)

const (
	TypeRateLimitHit     = "rate-limit-hit"
	TypeRateLimitSuccess = "rate-limit-success"

	publishTimeout = 2 * time.Second
)

// Message is the wire shape published to the Redis channel and relayed to
// SSE subscribers.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	DelayMS int64           `json:"delayMs,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type redisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier returns a Notifier that publishes rate-limit signals to a
// Redis pub/sub channel. Publish failures are logged and dropped.
func NewRedisNotifier(client *redis.Client, channel string, logger *slog.Logger) retry.Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (n *redisNotifier) RateLimitHit(ctx context.Context, event retry.Event) {
	n.publish(ctx, TypeRateLimitHit, event.Delay, event)
}

func (n *redisNotifier) RateLimitResolved(ctx context.Context, event retry.SuccessEvent) {
	n.publish(ctx, TypeRateLimitSuccess, 0, event)
}

func (n *redisNotifier) publish(ctx context.Context, eventType string, delay time.Duration, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.WarnContext(ctx, "failed to encode notification", "type", eventType, "error", err)
		return
	}

	msg := Message{
		ID:      id.NewString(),
		Type:    eventType,
		At:      time.Now().UTC(),
		DelayMS: delay.Milliseconds(),
		Payload: body,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		n.logger.WarnContext(ctx, "failed to encode notification envelope", "type", eventType, "error", err)
		return
	}

	// Publishing must not outlive a caller that is about to start its
	// backoff wait, nor inherit its cancellation mid-write.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.client.Publish(pubCtx, n.channel, data).Err(); err != nil {
		n.logger.WarnContext(ctx, "failed to publish notification", "type", eventType, "error", err)
	}
}
