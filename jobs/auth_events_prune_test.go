package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/taskdeck/taskdeck/internal/jobs"
)

type stubPruner struct {
	cutoff  time.Time
	removed int64
	err     error
}

func (s *stubPruner) Prune(_ context.Context, before time.Time) (int64, error) {
	s.cutoff = before
	return s.removed, s.err
}

func TestAuthEventsPruneJobUsesRetentionCutoff(t *testing.T) {
	pruner := &stubPruner{removed: 12}
	job := NewAuthEventsPruneJob(pruner, 90*24*time.Hour, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	now := time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return now }

	require.NoError(t, job.Handle(context.Background(), NewAuthEventsPruneTask()))
	require.Equal(t, time.Date(2026, 3, 3, 3, 0, 0, 0, time.UTC), pruner.cutoff)
}

func TestAuthEventsPruneJobErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	job := NewAuthEventsPruneJob(&stubPruner{err: storeErr}, time.Hour, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	require.ErrorIs(t, job.Handle(context.Background(), NewAuthEventsPruneTask()), storeErr)

	disabled := NewAuthEventsPruneJob(&stubPruner{}, 0, nil, nil)
	require.ErrorIs(t, disabled.Handle(context.Background(), NewAuthEventsPruneTask()), asynq.SkipRetry)

	var missing *AuthEventsPruneJob
	require.Error(t, missing.Handle(context.Background(), NewAuthEventsPruneTask()))
}

func TestNewWorkerRegistersCron(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: mr.Addr()}

	w, err := NewWorker(WorkerConfig{
		RedisOpts: opts,
		Cron: []CronRegistration{
			{Spec: "0 3 * * *", Task: NewAuthEventsPruneTask()},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, w.scheduler)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: opts,
		Cron: []CronRegistration{
			{Spec: "not a cron spec", Task: NewAuthEventsPruneTask()},
		},
	})
	require.Error(t, err)

	w, err = NewWorker(WorkerConfig{RedisOpts: opts})
	require.NoError(t, err)
	require.Nil(t, w.scheduler)
}
