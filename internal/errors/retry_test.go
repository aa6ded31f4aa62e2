package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsAfterRetries(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	err := WithRetry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewDatabaseError(errors.New("temporary failure"))
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond

	attempts := 0
	err := WithRetry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return NewValidationError("invalid input")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
	}

	attempts := 0
	err := WithRetry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return NewTelegramError(errors.New("send failed"))
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)

	fail := func(ctx context.Context) error {
		return NewTelegramError(errors.New("send failed"))
	}

	require.Error(t, cb.Execute(context.Background(), fail))
	require.Error(t, cb.Execute(context.Background(), fail))
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_RecoversAfterCooldown(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error {
		return NewTelegramError(errors.New("send failed"))
	}))
	assert.Equal(t, CircuitOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}))
	assert.Equal(t, CircuitClosed, cb.State())
}
