package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	cron           string
	pendingAge     time.Duration
	log            *slog.Logger
}

// NewScheduler builds a scheduler that enqueues the pending-purchase reminder
// sweep on the given cron expression.
func NewScheduler(redisOpt asynq.RedisConnOpt, cron string, pendingAge time.Duration, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		cron:           cron,
		pendingAge:     pendingAge,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	task, err := NewPendingReminderTask(s.pendingAge)
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(s.cron, task); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered pending reminder task", "cron", s.cron)
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
