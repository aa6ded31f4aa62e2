package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lewis-cheung/grocery-bot/internal/grocery"
	"github.com/lewis-cheung/grocery-bot/internal/jobs"
	"github.com/lewis-cheung/grocery-bot/internal/notify"
)

const defaultPendingAge = 72 * time.Hour

// PendingReminderHandler sweeps stale pending purchases and reminds their
// owners.
type PendingReminderHandler struct {
	groceries *grocery.Service
	notifier  *notify.Notifier
	log       *slog.Logger
}

func NewPendingReminderHandler(groceries *grocery.Service, notifier *notify.Notifier, log *slog.Logger) *PendingReminderHandler {
	if log == nil {
		log = slog.Default()
	}

	return &PendingReminderHandler{
		groceries: groceries,
		notifier:  notifier,
		log:       log,
	}
}

// ProcessTask implements asynq.Handler.
func (h *PendingReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload jobs.PendingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.log.Error("pending reminder: bad payload", slog.Any("error", err))
		return err
	}

	maxAge := payload.MaxAge
	if maxAge <= 0 {
		maxAge = defaultPendingAge
	}

	items, err := h.groceries.StalePending(ctx, maxAge)
	if err != nil {
		h.log.Error("pending reminder: listing stale items failed", slog.Any("error", err))
		return err
	}

	for _, item := range items {
		h.notifier.PendingReminder(ctx, item)
	}

	h.log.Info("pending reminder sweep finished",
		slog.Int("items", len(items)),
		slog.Duration("max_age", maxAge),
	)

	return nil
}
