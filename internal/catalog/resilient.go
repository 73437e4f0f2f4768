package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"flagpost/internal/config"
	"flagpost/internal/constants"
	"flagpost/internal/logger"
	"flagpost/internal/targeting"
	"flagpost/pkg/circuitbreaker"
	"flagpost/pkg/metrics"
	"flagpost/pkg/retry"
)

// ResilientRepository retries transient catalog failures behind a circuit
// breaker. An open breaker is returned immediately without retrying.
type ResilientRepository struct {
	repo    Repository
	cb      *circuitbreaker.Wrapper
	policy  retry.Policy
	timeout time.Duration
	service string
	logger  logger.Logger
}

func NewResilientRepository(repo Repository, retryCfg config.RetryConfig, cbCfg config.CircuitBreakerConfig, service string, log logger.Logger) *ResilientRepository {
	r := &ResilientRepository{
		repo:    repo,
		policy:  retry.FromConfig(retryCfg, retry.DefaultPolicy()),
		timeout: constants.CatalogQueryTimeout,
		service: service,
		logger:  log,
	}
	if cbCfg.Enabled {
		r.cb = circuitbreaker.NewWrapper(circuitbreaker.FromSettings(constants.CircuitBreakerCatalog, cbCfg))
	}
	return r
}

func (r *ResilientRepository) ListActiveAlerts(ctx context.Context, now time.Time) ([]targeting.Alert, error) {
	return call(ctx, r, "list_active_alerts", func(ctx context.Context) ([]targeting.Alert, error) {
		return r.repo.ListActiveAlerts(ctx, now)
	})
}

func (r *ResilientRepository) ListFeatureTogglesByName(ctx context.Context, names []string) ([]targeting.FeatureToggle, error) {
	return call(ctx, r, "list_feature_toggles", func(ctx context.Context) ([]targeting.FeatureToggle, error) {
		return r.repo.ListFeatureTogglesByName(ctx, names)
	})
}

func (r *ResilientRepository) CountActiveFeatures(ctx context.Context, now time.Time) (int, error) {
	return call(ctx, r, "count_active_features", func(ctx context.Context) (int, error) {
		return r.repo.CountActiveFeatures(ctx, now)
	})
}

func (r *ResilientRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func call[T any](ctx context.Context, r *ResilientRepository, operation string, fn func(context.Context) (T, error)) (T, error) {
	var result T

	err := retry.Do(ctx, r.policy, func() error {
		start := time.Now()
		v, err := circuitbreaker.Execute(ctx, r.cb, func() (T, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			return fn(attemptCtx)
		})

		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.IncDatabaseQuery(r.service, "postgres", operation, status)
		metrics.ObserveDatabaseQueryDuration(r.service, "postgres", operation, time.Since(start))

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return retry.NewFatalError(err)
		}
		if err != nil {
			return err
		}
		result = v
		return nil
	}, func(attempt int, err error, next time.Duration) {
		metrics.IncRetryAttempt(r.service, "catalog")
		r.logger.WarnwCtx(ctx, "Retrying catalog query",
			"operation", operation,
			"attempt", attempt,
			"next_delay", next,
			"error", err,
		)
	})

	return result, err
}
