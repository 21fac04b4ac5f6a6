package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/behancebrothers-ops/jjfg-sub000/pkg/httpclient"
)

// Breaker wraps a PaymentGateway with a circuit breaker. Only ErrUnavailable
// counts as a failure; a declined or unknown session is a healthy answer.
type Breaker struct {
	next    PaymentGateway
	create  *gobreaker.CircuitBreaker[*Session]
	inspect *gobreaker.CircuitBreaker[*SessionStatus]
}

// NewBreaker wraps next. Session creation and inspection trip independently.
func NewBreaker(next PaymentGateway, cfg httpclient.CircuitBreakerConfig, logger *slog.Logger) *Breaker {
	isFailure := func(err error) bool { return errors.Is(err, ErrUnavailable) }

	createCfg, inspectCfg := cfg, cfg
	createCfg.Name = cfg.Name + "-create"
	inspectCfg.Name = cfg.Name + "-inspect"

	return &Breaker{
		next:    next,
		create:  gobreaker.NewCircuitBreaker[*Session](httpclient.BreakerSettings(createCfg, logger, isFailure)),
		inspect: gobreaker.NewCircuitBreaker[*SessionStatus](httpclient.BreakerSettings(inspectCfg, logger, isFailure)),
	}
}

// Name returns the wrapped provider's name.
func (b *Breaker) Name() string {
	return b.next.Name()
}

// CreateSession calls the wrapped gateway unless the breaker is open.
func (b *Breaker) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	s, err := b.create.Execute(func() (*Session, error) {
		return b.next.CreateSession(ctx, p)
	})
	return s, openAsUnavailable(err)
}

// GetSession calls the wrapped gateway unless the breaker is open.
func (b *Breaker) GetSession(ctx context.Context, id string) (*SessionStatus, error) {
	s, err := b.inspect.Execute(func() (*SessionStatus, error) {
		return b.next.GetSession(ctx, id)
	})
	return s, openAsUnavailable(err)
}

func openAsUnavailable(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
