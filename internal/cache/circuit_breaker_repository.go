package cache

import (
	"context"
	"fmt"
	"time"

	"flagpost/internal/config"
	"flagpost/internal/constants"
	"flagpost/pkg/circuitbreaker"
)

type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	r := &CircuitBreakerRepository{repo: repo}
	if cfg.Enabled {
		r.cb = circuitbreaker.NewWrapper(circuitbreaker.FromSettings(constants.CircuitBreakerCache, cfg))
	}
	return r
}

type getResult struct {
	value []byte
	found bool
}

func (r *CircuitBreakerRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := circuitbreaker.Execute(ctx, r.cb, func() (getResult, error) {
		v, ok, err := r.repo.Get(ctx, key)
		return getResult{value: v, found: ok}, err
	})
	if err != nil {
		return nil, false, r.wrap(err)
	}
	return res.value, res.found, nil
}

func (r *CircuitBreakerRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := circuitbreaker.Execute(ctx, r.cb, func() (struct{}, error) {
		return struct{}{}, r.repo.Set(ctx, key, value, ttl)
	})
	return r.wrap(err)
}

func (r *CircuitBreakerRepository) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	n, err := circuitbreaker.Execute(ctx, r.cb, func() (int, error) {
		return r.repo.DeletePrefix(ctx, prefix)
	})
	return n, r.wrap(err)
}

func (r *CircuitBreakerRepository) Size(ctx context.Context, prefix string) (int, error) {
	n, err := circuitbreaker.Execute(ctx, r.cb, func() (int, error) {
		return r.repo.Size(ctx, prefix)
	})
	return n, r.wrap(err)
}

func (r *CircuitBreakerRepository) Incr(ctx context.Context, key string) (int64, error) {
	n, err := circuitbreaker.Execute(ctx, r.cb, func() (int64, error) {
		return r.repo.Incr(ctx, key)
	})
	return n, r.wrap(err)
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func (r *CircuitBreakerRepository) IsOpen() bool {
	return r.cb != nil && r.cb.IsOpen()
}

func (r *CircuitBreakerRepository) wrap(err error) error {
	if err == nil {
		return nil
	}
	if r.IsOpen() {
		return fmt.Errorf("circuit breaker is open for %s: %w", constants.CircuitBreakerCache, err)
	}
	return err
}
