package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lewis-cheung/grocery-bot/internal/bot"
	"github.com/lewis-cheung/grocery-bot/internal/database"
	"github.com/lewis-cheung/grocery-bot/internal/grocery"
	"github.com/lewis-cheung/grocery-bot/internal/health"
	"github.com/lewis-cheung/grocery-bot/internal/idempotency"
	"github.com/lewis-cheung/grocery-bot/internal/jobs"
	jobhandlers "github.com/lewis-cheung/grocery-bot/internal/jobs/handlers"
	"github.com/lewis-cheung/grocery-bot/internal/lifecycle"
	"github.com/lewis-cheung/grocery-bot/internal/middleware"
	"github.com/lewis-cheung/grocery-bot/internal/ratelimit"
	"github.com/lewis-cheung/grocery-bot/internal/repository"
	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/internal/user"
	"github.com/lewis-cheung/grocery-bot/internal/usercache"
	"github.com/lewis-cheung/grocery-bot/pkg/config"
	"github.com/lewis-cheung/grocery-bot/pkg/graceful"
	"github.com/lewis-cheung/grocery-bot/pkg/logger"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
	appredis "github.com/lewis-cheung/grocery-bot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(cfg.Logging, cfg.Sentry.Enabled)
	log.Info("starting grocery bot",
		slog.String("mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	mongo, err := database.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.Error("failed to connect to mongodb", slog.Any("error", err))
		os.Exit(1)
	}

	if err := mongo.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure database schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := appredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(mongo.DB, log)
	itemRepo := repository.NewItemRepository(mongo.DB, log)

	userCache := usercache.NewCache(appredis.NewMetricsClient(redisClient))
	userService := user.NewService(userRepo, userCache, log)
	groceryService := grocery.NewService(itemRepo, cfg.Match.TopN, log)

	stateStorage := state.NewRedisStorage(redisClient.Client, log)
	fsm := state.NewStateMachine(stateStorage, log, redisClient.Client)

	idemStore := idempotency.NewRedisStore(redisClient.Client, log)
	idemManager := idempotency.NewManager(idemStore, log)

	var rateLimitMw *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisLimiter(redisClient.Client, log)
		rules := ratelimit.NewRules(cfg.RateLimit)
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, rules, log)
	}

	app, err := bot.New(*cfg, log, fsm, idemManager, rateLimitMw, userService, groceryService)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram", func(ctx context.Context) error {
		app.Stop()
		return nil
	})
	shutdown.Register("mongodb", mongo.Close)
	shutdown.Register("redis", lifecycle.Closer(redisClient))

	checker := health.NewChecker(log)
	checker.AddCheck("mongodb", health.NewMongoChecker(mongo.Client))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(app.Telebot()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, v := range results {
			if v != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: logger.Middleware(middleware.New(log)(mux)),
	}
	server := graceful.NewServer(log, httpServer, cfg.Server.ShutdownTimeout)

	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			log.Error("http server stopped", slog.Any("error", err))
			stop()
		}
	}()

	if cfg.Reminder.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		scheduler := jobs.NewScheduler(redisOpt, cfg.Reminder.Cron, cfg.Reminder.PendingAge, log)
		if err := scheduler.RegisterTasks(); err != nil {
			log.Error("failed to register scheduled tasks", slog.Any("error", err))
			os.Exit(1)
		}
		scheduler.Run()
		shutdown.Register("scheduler", func(ctx context.Context) error {
			scheduler.Shutdown()
			return nil
		})

		worker := jobs.NewWorker(redisOpt, map[string]int{
			jobs.QueueDefault: 3,
			jobs.QueueLow:     1,
		}, log)
		worker.RegisterHandler(jobs.TaskTypePendingReminder,
			jobhandlers.NewPendingReminderHandler(groceryService, app.Notifier(), log))
		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", slog.Any("error", err))
			}
		}()
		shutdown.Register("jobs_worker", func(ctx context.Context) error {
			worker.Shutdown()
			return nil
		})
	}

	stateCollector := metrics.NewStateCollector(fsm)
	go stateCollector.Run(ctx)

	stateCleaner := state.NewCleaner(stateStorage, log, time.Hour, 10*time.Minute)
	go stateCleaner.Run(ctx)

	if cfg.RateLimit.Enabled {
		rlCleaner := ratelimit.NewCleaner(redisClient.Client, log, 5*time.Minute)
		go rlCleaner.Run(ctx)
	}

	config.Watch(v, log, func(updated *config.Config) {
		log.Info("configuration file changed, restart to apply connection settings")
	})

	go app.Start()
	log.Info("grocery bot is running")

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}
}
