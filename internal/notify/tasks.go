package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypePushDeliver is the asynq task type for one push delivery.
const TaskTypePushDeliver = "push:deliver"

// PushPayload is the task body for a push delivery to one user.
type PushPayload struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// NewPushTask builds the asynq task for a push delivery.
func NewPushTask(p PushPayload, maxRetry int) (*asynq.Task, error) {
	encoded, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode push payload: %w", err)
	}
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return asynq.NewTask(TaskTypePushDeliver, encoded, asynq.MaxRetry(maxRetry)), nil
}
