package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/taskdeck/taskdeck/internal/jobs"
)

// EventPruner deletes auth events older than a cutoff. auth.PGEventStore implements it.
type EventPruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// AuthEventsPruneJob enforces the auth_events retention window.
type AuthEventsPruneJob struct {
	Pruner    EventPruner
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewAuthEventsPruneJob initialises the retention handler.
func NewAuthEventsPruneJob(pruner EventPruner, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuthEventsPruneJob {
	return &AuthEventsPruneJob{
		Pruner:    pruner,
		Retention: retention,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes TaskTypeAuthEventsPrune tasks.
func (j *AuthEventsPruneJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Pruner == nil {
		return errors.New("auth events prune: handler not configured")
	}
	if j.Retention <= 0 {
		return asynq.SkipRetry
	}

	cutoff := j.now().Add(-j.Retention)
	tracker := j.metrics().Track(TaskTypeAuthEventsPrune)
	removed, err := j.Pruner.Prune(ctx, cutoff)
	if err != nil {
		j.logger().Error("prune auth events", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger().Info("pruned auth events", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	return tracker.End(nil)
}

func (j *AuthEventsPruneJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeAuthEventsPrune))
	}
	return slog.Default().With(slog.String("job", TaskTypeAuthEventsPrune))
}

func (j *AuthEventsPruneJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AuthEventsPruneJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
