package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// Supported publisher kinds.
const (
	KindLog      = "log"
	KindKafka    = "kafka"
	KindRedis    = "redis"
	KindRabbitMQ = "rabbitmq"
	KindPubSub   = "pubsub"
)

// Config selects and configures a publisher.
type Config struct {
	Kind string

	BreakerEnabled             bool
	BreakerConsecutiveFailures int
	BreakerTimeout             time.Duration

	KafkaBrokers       []string
	KafkaTopic         string
	KafkaTLSEnabled    bool
	KafkaTLSSkipVerify bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string

	RabbitMQURL            string
	RabbitMQExchange       string
	RabbitMQConfirmTimeout time.Duration

	PubSubTopicURL string
}

// New builds the publisher selected by cfg.Kind, wrapped in a circuit breaker when enabled.
// The log publisher is never wrapped.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Publisher, error) {
	var (
		pub Publisher
		err error
	)

	switch cfg.Kind {
	case KindLog, "":
		return NewLogPublisher(logger), nil
	case KindKafka:
		pub, err = NewKafkaPublisher(
			cfg.KafkaBrokers,
			cfg.KafkaTopic,
			NewSaramaConfig(cfg.KafkaTLSEnabled, cfg.KafkaTLSSkipVerify),
			logger,
		)
	case KindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			_ = client.Close()
			return nil, apperrors.Wrap(pingErr, "failed to connect to redis")
		}
		pub = NewRedisPublisher(client, cfg.RedisStream)
	case KindRabbitMQ:
		pub, err = NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQConfirmTimeout)
	case KindPubSub:
		pub, err = NewPubSubPublisher(ctx, cfg.PubSubTopicURL)
	default:
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unknown outbox publisher %q", cfg.Kind))
	}
	if err != nil {
		return nil, err
	}

	if cfg.BreakerEnabled {
		consecutive := cfg.BreakerConsecutiveFailures
		if consecutive < 1 {
			consecutive = 1
		}
		pub = NewBreakerPublisher(pub, BreakerConfig{
			Name:                "outbox-" + cfg.Kind,
			ConsecutiveFailures: uint32(consecutive), //nolint:gosec // consecutive >= 1
			Timeout:             cfg.BreakerTimeout,
		}, logger)
	}

	logger.Info("outbox publisher configured",
		slog.String("kind", cfg.Kind),
		slog.Bool("circuit_breaker", cfg.BreakerEnabled),
	)
	return pub, nil
}
