package publisher

import (
	"context"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// RedisPublisher appends messages to a Redis stream with XADD.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher creates a RedisPublisher. The publisher owns the client and closes it.
func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Publish adds one stream entry carrying the headers and the payload as fields.
func (p *RedisPublisher) Publish(ctx context.Context, msg Message) error {
	values := make(map[string]any, 5)
	for k, v := range msg.headers() {
		values[k] = v
	}
	values["data"] = string(msg.Payload)

	if err := p.client.XAdd(ctx, &redis.XAddArgs{Stream: p.stream, Values: values}).Err(); err != nil {
		return apperrors.Wrap(err, "xadd")
	}
	return nil
}

// Close closes the underlying client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
