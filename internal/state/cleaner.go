package state

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Cleaner clears conversation states that have been idle longer than the
// configured TTL. Redis key expiry already covers the common case; the
// cleaner handles states rewritten with a fresh TTL mid-conversation and then
// abandoned.
type Cleaner struct {
	storage  Storage
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(storage Storage, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		storage:  storage,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.storage == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if reason := ctx.Err(); reason != nil {
				c.log.Info("state cleaner stopped", slog.String("reason", reason.Error()))
			}
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	states, err := c.storage.GetAllStates(ctx)
	if err != nil {
		c.log.Error("state cleaner failed to list states", slog.Any("error", err))
		return
	}

	cutoff := time.Now().UTC().Add(-c.ttl)
	cleared := 0

	for _, st := range states {
		if st == nil || !st.UpdatedAt.Before(cutoff) {
			continue
		}

		if err := c.storage.ClearState(ctx, st.UserID); err != nil {
			if !errors.Is(err, ErrStateNotFound) {
				c.log.Error("state cleaner failed to clear state", slog.Int64("user_id", st.UserID), slog.Any("error", err))
			}
			continue
		}

		cleared++
	}

	if cleared > 0 {
		c.log.Info("stale conversation states cleared", slog.Int("count", cleared))
	}
}
