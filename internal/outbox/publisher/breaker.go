package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// BreakerConfig configures the circuit breaker around a publisher.
type BreakerConfig struct {
	Name                string
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

// BreakerPublisher stops calling a failing broker after a run of consecutive failures and
// probes it again once Timeout has elapsed. While open, Publish fails fast with an error
// wrapping ErrUnavailable and the relay keeps the records for a later attempt.
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerPublisher wraps next in a circuit breaker.
func NewBreakerPublisher(next Publisher, cfg BreakerConfig, logger *slog.Logger) *BreakerPublisher {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("publisher circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &BreakerPublisher{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Publish delegates to the wrapped publisher unless the breaker is open.
func (p *BreakerPublisher) Publish(ctx context.Context, msg Message) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.next.Publish(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
	return err
}

// State returns the breaker state name.
func (p *BreakerPublisher) State() string {
	return p.breaker.State().String()
}

// Close closes the wrapped publisher.
func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
