// Package idempotency deduplicates Telegram updates. Telegram redelivers
// updates after network hiccups, and a redelivered /bought confirmation must
// not append a second purchase record.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrRequestInProgress is returned when another worker currently holds the
// lock for the same key and has not finished yet.
var ErrRequestInProgress = errors.New("request with this key is already in progress")

// Operation is the unit of work guarded by an idempotency key.
type Operation func(ctx context.Context) (interface{}, error)

// Result carries the operation outcome and whether it was served from a
// previously stored record.
type Result struct {
	Response  interface{}
	FromCache bool
}

// Manager executes operations at most once per key.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

const (
	executionLockTTL = 5 * time.Minute
	lockPollInterval = 100 * time.Millisecond
)

// NewManager builds a Manager on top of the given record store.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store: store,
		log:   log,
	}
}

// Execute runs fn under the key's lock. If a completed record already exists
// the stored response is returned instead of running fn again. If another
// execution is in flight, ErrRequestInProgress is returned.
func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	for {
		locked, err := m.store.Lock(ctx, key, executionLockTTL)
		if err != nil {
			return nil, err
		}
		if locked {
			return m.run(ctx, key, ttl, fn)
		}

		record, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		if record != nil {
			switch record.Status {
			case StatusProcessing:
				return nil, ErrRequestInProgress
			case StatusCompleted:
				var response interface{}
				if len(record.Response) > 0 {
					if err := json.Unmarshal(record.Response, &response); err != nil {
						return nil, err
					}
				}
				return &Result{Response: response, FromCache: true}, nil
			}
		}

		// Lock holder released without writing a record. Retry shortly.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (m *manager) run(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	defer func() {
		if err := m.store.ReleaseLock(ctx, key); err != nil {
			m.log.Warn("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	responseBytes, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(ctx, key, &Record{
		Status:   StatusCompleted,
		Response: responseBytes,
	}, ttl); err != nil {
		return nil, err
	}

	return &Result{Response: result, FromCache: false}, nil
}
