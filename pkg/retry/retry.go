package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"flagpost/internal/config"
)

// FatalError marks an error that retrying cannot fix. *pkg/errors.Error
// satisfies it for validation, not-found and conflict failures.
type FatalError interface {
	error
	IsFatal() bool
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	return e.err.Error()
}

func (e *fatalError) IsFatal() bool {
	return true
}

func (e *fatalError) Unwrap() error {
	return e.err
}

func NewFatalError(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

// FromConfig overlays the non-zero fields of cfg on base.
func FromConfig(cfg config.RetryConfig, base Policy) Policy {
	if cfg.MaxAttempts > 0 {
		base.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialInterval > 0 {
		base.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		base.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 0 {
		base.Multiplier = cfg.Multiplier
	}
	if cfg.MaxElapsedTime > 0 {
		base.MaxElapsedTime = cfg.MaxElapsedTime
	}
	return base
}

// OnRetry is called after a failed attempt that will be retried.
type OnRetry func(attempt int, err error, nextDelay time.Duration)

func Retry(ctx context.Context, policy Policy, fn func() error) error {
	return Do(ctx, policy, fn, nil)
}

// Do runs fn until it succeeds, returns a FatalError, the context ends or the
// policy is exhausted. The last error is returned.
func Do(ctx context.Context, policy Policy, fn func() error, onRetry OnRetry) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = DefaultPolicy().Multiplier
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		var fatalErr FatalError
		if errors.As(err, &fatalErr) && fatalErr.IsFatal() {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		if onRetry != nil {
			onRetry(attempt, err, next)
		}
	}

	return backoff.RetryNotify(operation, newBackOff(ctx, policy), notify)
}
