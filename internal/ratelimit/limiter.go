// Package ratelimit enforces a per-user sliding window over incoming commands.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// keyPrefix namespaces limiter entries in Redis. The cleaner scans the same
// prefix, so the two must stay in sync.
const keyPrefix = "ratelimit:"

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter evaluates whether a keyed request fits within limit per window.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded indicates the rate limit has been reached for the key.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// scoreAt converts a timestamp to the millisecond score stored in the
// limiter's sorted sets.
func scoreAt(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}
