package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/taskdeck/taskdeck/internal/auth"
	jobmetrics "github.com/taskdeck/taskdeck/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// EventRecorder persists auth events. auth.PGEventStore implements it.
type EventRecorder interface {
	Record(ctx context.Context, event auth.Event) error
}

// AuthEventJob writes queued auth events to the store.
type AuthEventJob struct {
	Recorder EventRecorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewAuthEventJob initialises the auth event handler.
func NewAuthEventJob(recorder EventRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuthEventJob {
	return &AuthEventJob{Recorder: recorder, Logger: logger, Metrics: metrics}
}

// Handle executes TaskTypeAuthEvent tasks.
func (j *AuthEventJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Recorder == nil {
		return errors.New("auth event: handler not configured")
	}
	var event auth.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		j.logger().Warn("discard auth event", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if event.Kind == "" || event.OccurredAt.IsZero() {
		j.logger().Warn("discard incomplete auth event", slog.String("kind", string(event.Kind)))
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeAuthEvent)
	if err := j.Recorder.Record(ctx, event); err != nil {
		j.logger().Error("record auth event", slog.String("kind", string(event.Kind)), slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddEvent(string(event.Kind))
	return tracker.End(nil)
}

func (j *AuthEventJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeAuthEvent))
	}
	return slog.Default().With(slog.String("job", TaskTypeAuthEvent))
}

func (j *AuthEventJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
