package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ngocvh/backend-cho/internal/obs"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Worker consumes push delivery tasks, resolves device tokens, and calls the
// relay. Returning an error lets asynq retry with backoff.
type Worker struct {
	Store *store.Store
	Relay *Relay
	Log   zerolog.Logger
}

// HandlePushDeliver processes one TaskTypePushDeliver task.
func (w *Worker) HandlePushDeliver(ctx context.Context, task *asynq.Task) error {
	var payload PushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Malformed payloads never succeed; drop instead of retrying.
		w.Log.Error().Err(err).Msg("push task payload undecodable")
		return nil
	}
	tokens, err := w.Store.ListDeviceTokens(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}
	if len(tokens) == 0 {
		w.countPush("no_device")
		return nil
	}
	if err := w.Relay.Send(ctx, tokens, payload.Title, payload.Body, payload.Data); err != nil {
		w.countPush("error")
		return err
	}
	w.countPush("delivered")
	return nil
}

// Mux returns the asynq handler mux for the worker binary.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePushDeliver, w.HandlePushDeliver)
	return mux
}

func (w *Worker) countPush(result string) {
	if obs.PushDeliveriesTotal != nil {
		obs.PushDeliveriesTotal.WithLabelValues(result).Inc()
	}
}
