package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Feed delivers published notifications to in-process subscribers.
type Feed interface {
	// Subscribe returns a channel of messages and a release function.
	// The channel closes when the context ends or release is called.
	Subscribe(ctx context.Context) (<-chan Message, func(), error)
}

type redisFeed struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisFeed(client *redis.Client, channel string, logger *slog.Logger) Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisFeed{client: client, channel: channel, logger: logger}
}

func (f *redisFeed) Subscribe(ctx context.Context) (<-chan Message, func(), error) {
	sub := f.client.Subscribe(ctx, f.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for raw := range sub.Channel() {
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				f.logger.WarnContext(ctx, "dropping undecodable notification", "error", err)
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	release := func() { _ = sub.Close() }
	return out, release, nil
}
