package errors

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls exponential backoff behaviour for WithRetry.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetry runs fn until it succeeds, returns a non-retryable error or the
// attempt budget is exhausted.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := calculateBackoffDuration(cfg, attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// IsRetryable reports whether err is an AppError marked as retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return false
}

func calculateBackoffDuration(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.InitialDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 2.0
	}

	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * multiplier)
		if cfg.MaxDelay > 0 && delay >= cfg.MaxDelay {
			return cfg.MaxDelay
		}
	}

	return delay
}
