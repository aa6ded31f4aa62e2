package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypePendingReminder = "pending:reminder"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// PendingReminderPayload selects pending purchases older than MaxAge for a
// reminder sweep.
type PendingReminderPayload struct {
	MaxAge time.Duration `json:"max_age"`
}

func NewPendingReminderTask(maxAge time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(PendingReminderPayload{MaxAge: maxAge})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypePendingReminder, payload, asynq.Queue(QueueLow)), nil
}
