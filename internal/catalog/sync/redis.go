package sync

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier receives catalog change triggers over Redis pub/sub.
// The catalog backend publishes an empty message to catalog:changed:<id>
// whenever anything in that business's catalog is written.
type RedisNotifier struct {
	client *redis.Client
}

var _ Notifier = (*RedisNotifier)(nil)

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Subscribe starts a pub/sub consumer for one business. onChange runs on a
// dedicated goroutine, once per received message; the message body is
// ignored. The returned Unsubscribe closes the pub/sub connection, which
// ends the goroutine.
func (n *RedisNotifier) Subscribe(ctx context.Context, businessID string, onChange func()) (Unsubscribe, error) {
	sub := n.client.Subscribe(ctx, channel(businessID))

	// Receive forces the SUBSCRIBE round-trip so a broken Redis connection
	// surfaces here instead of as a silently dead subscription.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel(businessID), err)
	}

	go func() {
		for range sub.Channel() {
			onChange()
		}
	}()

	return sub.Close, nil
}

func channel(businessID string) string {
	return "catalog:changed:" + businessID
}
