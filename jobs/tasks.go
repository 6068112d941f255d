package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/taskdeck/taskdeck/internal/auth"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuthEvent is the task type for persisting auth audit events.
	TaskTypeAuthEvent = "auth:event"
	// TaskTypeAuthEventsPrune is the task type for deleting expired auth events.
	TaskTypeAuthEventsPrune = "auth:events_prune"
)

// NewAuthEventTask constructs an Asynq task carrying event.
func NewAuthEventTask(event auth.Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuthEvent, data, asynq.MaxRetry(5)), nil
}

// NewAuthEventsPruneTask constructs the scheduled retention task.
func NewAuthEventsPruneTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAuthEventsPrune, nil, asynq.MaxRetry(3))
}
