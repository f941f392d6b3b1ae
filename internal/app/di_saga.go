package app

import (
	"fmt"

	"github.com/allisson/studygroups/internal/metrics"
	sagaHTTP "github.com/allisson/studygroups/internal/saga/http"
	sagaMySQL "github.com/allisson/studygroups/internal/saga/repository/mysql"
	sagaPostgreSQL "github.com/allisson/studygroups/internal/saga/repository/postgresql"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

// SagaMetrics returns the saga outcome metrics. It is a no-op when metrics are disabled.
func (c *Container) SagaMetrics() (metrics.SagaMetrics, error) {
	var err error
	c.sagaMetricsInit.Do(func() {
		c.sagaMetrics, err = c.initSagaMetrics()
		if err != nil {
			c.initErrors["sagaMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sagaMetrics"]; exists {
		return nil, storedErr
	}
	return c.sagaMetrics, nil
}

// ExecutionRepository returns the saga execution log repository based on database driver.
func (c *Container) ExecutionRepository() (sagaUsecase.ExecutionRepository, error) {
	var err error
	c.executionRepoInit.Do(func() {
		c.executionRepo, err = c.initExecutionRepository()
		if err != nil {
			c.initErrors["executionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["executionRepo"]; exists {
		return nil, storedErr
	}
	return c.executionRepo, nil
}

// CreateGroupUseCase returns the create group saga, instrumented with business metrics.
func (c *Container) CreateGroupUseCase() (sagaUsecase.CreateGroupUseCase, error) {
	var err error
	c.createGroupUseCaseInit.Do(func() {
		c.createGroupUseCase, err = c.initCreateGroupUseCase()
		if err != nil {
			c.initErrors["createGroupUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["createGroupUseCase"]; exists {
		return nil, storedErr
	}
	return c.createGroupUseCase, nil
}

// ExecutionUseCase returns the saga execution log use case.
func (c *Container) ExecutionUseCase() (sagaUsecase.ExecutionUseCase, error) {
	var err error
	c.executionUseCaseInit.Do(func() {
		c.executionUseCase, err = c.initExecutionUseCase()
		if err != nil {
			c.initErrors["executionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["executionUseCase"]; exists {
		return nil, storedErr
	}
	return c.executionUseCase, nil
}

// SagaHandler returns a new saga execution HTTP handler.
func (c *Container) SagaHandler() (*sagaHTTP.SagaHandler, error) {
	useCase, err := c.ExecutionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get execution use case for saga handler: %w", err)
	}
	return sagaHTTP.NewSagaHandler(useCase, c.Logger()), nil
}

func (c *Container) initSagaMetrics() (metrics.SagaMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpSagaMetrics(), nil
	}
	return metrics.NewSagaMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initExecutionRepository() (sagaUsecase.ExecutionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for execution repository: %w", err)
	}

	switch c.config.DBDriver {
	case driverMySQL:
		return sagaMySQL.NewExecutionRepository(db), nil
	case driverPostgres:
		return sagaPostgreSQL.NewExecutionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initCreateGroupUseCase() (sagaUsecase.CreateGroupUseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for create group saga: %w", err)
	}

	users, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for create group saga: %w", err)
	}

	groupRepo, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for create group saga: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for create group saga: %w", err)
	}

	executionRepo, err := c.ExecutionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get execution repository for create group saga: %w", err)
	}

	sagaMetrics, err := c.SagaMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get saga metrics for create group saga: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for create group saga: %w", err)
	}

	executor := sagaUsecase.NewExecutor(
		sagaUsecase.ExecutorConfig{
			StepTimeout:     c.config.SagaStepTimeout,
			MaxRetries:      c.config.SagaStepMaxRetries,
			InitialInterval: c.config.SagaRetryInitialInterval,
			MaxInterval:     c.config.SagaRetryMaxInterval,
		},
		sagaUsecase.NewLogAlerter(sagaMetrics, logger),
		sagaMetrics,
		logger,
	)

	saga := sagaUsecase.NewCreateGroupSaga(
		txManager,
		users,
		groupRepo,
		outboxRepo,
		executionRepo,
		executor,
		sagaMetrics,
		logger,
	)

	return sagaUsecase.NewCreateGroupUseCaseWithMetrics(saga, businessMetrics), nil
}

func (c *Container) initExecutionUseCase() (sagaUsecase.ExecutionUseCase, error) {
	executionRepo, err := c.ExecutionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get execution repository for execution use case: %w", err)
	}
	return sagaUsecase.NewExecutionUseCase(executionRepo), nil
}
