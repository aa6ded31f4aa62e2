package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Worker registers task handlers and controls the background worker lifecycle.
type Worker interface {
	RegisterHandler(taskType string, handler asynq.Handler)
	Run() error
	Shutdown()
}

type worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *slog.Logger
}

var _ Worker = (*worker)(nil)

// workerConcurrency bounds parallel task execution. Reminder sweeps are rare
// and cheap, so a small pool is plenty.
const workerConcurrency = 4

// NewWorker constructs a Worker backed by an asynq.Server instance.
func NewWorker(redisOpt asynq.RedisConnOpt, queues map[string]int, log *slog.Logger) Worker {
	if log == nil {
		log = slog.Default()
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues:         queues,
		Concurrency:    workerConcurrency,
		RetryDelayFunc: asynq.DefaultRetryDelayFunc,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed",
				slog.String("type", task.Type()),
				slog.Any("error", err),
			)
		}),
	})

	return &worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
}

// RegisterHandler wires a task type to the provided handler.
func (w *worker) RegisterHandler(taskType string, handler asynq.Handler) {
	w.mux.Handle(taskType, handler)
}

// Run starts the processing loop and blocks until Shutdown.
func (w *worker) Run() error {
	w.log.Info("jobs worker: starting processing loop")
	return w.server.Run(w.mux)
}

// Shutdown stops the worker, waiting for in-flight tasks.
func (w *worker) Shutdown() {
	w.log.Info("jobs worker: shutting down")
	w.server.Shutdown()
}
