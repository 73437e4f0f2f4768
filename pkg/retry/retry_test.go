package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagpost/internal/config"
	pkgerrors "flagpost/pkg/errors"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	var retried []int

	err := Do(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(2), func() error {
		calls++
		return errors.New("still down")
	})

	require.Error(t, err)
	assert.Equal(t, "still down", err.Error())
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnFatalError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		return NewFatalError(errors.New("bad input"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnAppValidationError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		return pkgerrors.ErrValidation
	})

	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesInternalAppError(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		return pkgerrors.ErrInternal
	})
	assert.Equal(t, 3, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastPolicy(5), func() error {
		calls++
		return errors.New("fail")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestFromConfig(t *testing.T) {
	base := DefaultPolicy()
	p := FromConfig(config.RetryConfig{MaxAttempts: 7, InitialInterval: 10 * time.Millisecond}, base)

	assert.Equal(t, 7, p.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, p.InitialInterval)
	assert.Equal(t, base.MaxInterval, p.MaxInterval)
	assert.Equal(t, base.Multiplier, p.Multiplier)
}
