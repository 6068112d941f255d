package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/internal/auth"
	jobmetrics "github.com/taskdeck/taskdeck/internal/jobs"
	"github.com/taskdeck/taskdeck/internal/platform/db"
	"github.com/taskdeck/taskdeck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if !cfg.RedisEnabled() {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	events := auth.NewEventStore(pool)
	metrics := jobmetrics.NewMetrics(nil)
	eventJob := jobs.NewAuthEventJob(events, logger, metrics)
	pruneJob := jobs.NewAuthEventsPruneJob(events, cfg.AuthEventsRetention, logger, metrics)

	var cron []jobs.CronRegistration
	if cfg.AuthEventsRetention > 0 && cfg.AuthEventsPruneCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.AuthEventsPruneCron, Task: jobs.NewAuthEventsPruneTask()})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.RedisOptions().AsynqOpt(),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAuthEvent, Handler: eventJob.Handle},
			{Type: jobs.TaskTypeAuthEventsPrune, Handler: pruneJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
