package app

import (
	"context"
	"fmt"

	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/outbox/publisher"
	outboxMySQL "github.com/allisson/studygroups/internal/outbox/repository/mysql"
	outboxPostgreSQL "github.com/allisson/studygroups/internal/outbox/repository/postgresql"
	outboxUsecase "github.com/allisson/studygroups/internal/outbox/usecase"
)

// outboxRepository serves both the writers appending records inside their transactions
// and the relay delivering them.
type outboxRepository interface {
	outboxUsecase.OutboxRepository
	Append(ctx context.Context, record *domain.OutboxRecord) error
	ListByAggregate(ctx context.Context, aggregateType, aggregateID string) ([]*domain.OutboxRecord, error)
}

var (
	_ outboxRepository = (*outboxPostgreSQL.OutboxRepository)(nil)
	_ outboxRepository = (*outboxMySQL.OutboxRepository)(nil)
)

// OutboxRepository returns the outbox repository based on database driver.
func (c *Container) OutboxRepository() (outboxRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OutboxMetrics returns the relay metrics. The queue-size gauge is registered on first access.
func (c *Container) OutboxMetrics() (metrics.OutboxMetrics, error) {
	var err error
	c.outboxMetricsInit.Do(func() {
		c.outboxMetrics, err = c.initOutboxMetrics()
		if err != nil {
			c.initErrors["outboxMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxMetrics"]; exists {
		return nil, storedErr
	}
	return c.outboxMetrics, nil
}

// Publisher returns the broker publisher selected by OUTBOX_PUBLISHER.
func (c *Container) Publisher() (publisher.Publisher, error) {
	var err error
	c.publisherInit.Do(func() {
		c.publisher, err = c.initPublisher()
		if err != nil {
			c.initErrors["publisher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["publisher"]; exists {
		return nil, storedErr
	}
	return c.publisher, nil
}

// RelayUseCase returns the outbox relay. Only the relay connects to the broker, so callers
// that never need delivery never dial it.
func (c *Container) RelayUseCase() (outboxUsecase.RelayUseCase, error) {
	var err error
	c.relayUseCaseInit.Do(func() {
		c.relayUseCase, err = c.initRelayUseCase()
		if err != nil {
			c.initErrors["relayUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["relayUseCase"]; exists {
		return nil, storedErr
	}
	return c.relayUseCase, nil
}

func (c *Container) initOutboxRepository() (outboxRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case driverMySQL:
		return outboxMySQL.NewOutboxRepository(db), nil
	case driverPostgres:
		return outboxPostgreSQL.NewOutboxRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initOutboxMetrics() (metrics.OutboxMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpOutboxMetrics(), nil
	}

	outboxMetrics, err := metrics.NewOutboxMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, err
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox metrics: %w", err)
	}
	if err := outboxMetrics.ObserveQueueSize(outboxRepo.CountUnpublished); err != nil {
		return nil, fmt.Errorf("failed to register outbox queue size gauge: %w", err)
	}

	return outboxMetrics, nil
}

func (c *Container) initPublisher() (publisher.Publisher, error) {
	ctx, cancel := context.WithTimeout(context.Background(), publisherConnectTimeout)
	defer cancel()

	pub, err := publisher.New(ctx, publisher.Config{
		Kind:                       c.config.OutboxPublisher,
		BreakerEnabled:             c.config.OutboxBreakerEnabled,
		BreakerConsecutiveFailures: c.config.OutboxBreakerConsecutiveFailures,
		BreakerTimeout:             c.config.OutboxBreakerTimeout,
		KafkaBrokers:               c.config.GetKafkaBrokers(),
		KafkaTopic:                 c.config.KafkaTopic,
		KafkaTLSEnabled:            c.config.KafkaTLSEnabled,
		KafkaTLSSkipVerify:         c.config.KafkaTLSSkipVerify,
		RedisAddr:                  c.config.RedisAddr,
		RedisPassword:              c.config.RedisPassword,
		RedisDB:                    c.config.RedisDB,
		RedisStream:                c.config.RedisStream,
		RabbitMQURL:                c.config.RabbitMQURL,
		RabbitMQExchange:           c.config.RabbitMQExchange,
		RabbitMQConfirmTimeout:     c.config.RabbitMQConfirmTimeout,
		PubSubTopicURL:             c.config.PubSubTopicURL,
	}, c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create %q publisher: %w", c.config.OutboxPublisher, err)
	}
	return pub, nil
}

func (c *Container) initRelayUseCase() (outboxUsecase.RelayUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for relay: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for relay: %w", err)
	}

	pub, err := c.Publisher()
	if err != nil {
		return nil, err
	}

	outboxMetrics, err := c.OutboxMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox metrics for relay: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for relay: %w", err)
	}

	relay := outboxUsecase.NewRelayUseCase(
		outboxUsecase.Config{
			PollInterval:   c.config.OutboxPollInterval,
			BatchSize:      c.config.OutboxBatchSize,
			MaxAttempts:    c.config.OutboxMaxAttempts,
			RetryBase:      c.config.OutboxRetryBase,
			RetryMax:       c.config.OutboxRetryMax,
			PublishTimeout: c.config.OutboxPublishTimeout,
		},
		txManager,
		outboxRepo,
		pub,
		outboxMetrics,
		c.Logger(),
	)

	return outboxUsecase.NewRelayUseCaseWithMetrics(relay, businessMetrics), nil
}
