package notify

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ngocvh/backend-cho/internal/events"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Notifier translates domain events into queued push deliveries. It
// implements events.Notifier; enqueue failures bubble up to the bus, which
// logs them without failing the triggering operation.
type Notifier struct {
	Store    *store.Store
	Client   *asynq.Client
	Queue    string
	MaxRetry int
	Log      zerolog.Logger
}

// Notify enqueues a push task for the users affected by the event.
func (n *Notifier) Notify(ctx context.Context, ev events.Event) error {
	if n == nil || n.Client == nil {
		return nil
	}
	title, body, ok := messageFor(ev.Topic)
	if !ok {
		return nil
	}
	recipients, err := n.recipientsFor(ctx, ev)
	if err != nil {
		return err
	}
	for _, userID := range recipients {
		task, err := NewPushTask(PushPayload{
			UserID: userID,
			Title:  title,
			Body:   body,
			Data:   map[string]any{"topic": ev.Topic, "aggregate_id": ev.AggregateID},
		}, n.MaxRetry)
		if err != nil {
			return err
		}
		queue := n.Queue
		if queue == "" {
			queue = "default"
		}
		if _, err := n.Client.EnqueueContext(ctx, task, asynq.Queue(queue)); err != nil {
			return fmt.Errorf("enqueue push task: %w", err)
		}
	}
	return nil
}

// messageFor maps a topic to notification copy. Topics without copy produce
// no push.
func messageFor(topic string) (title, body string, ok bool) {
	switch topic {
	case events.TopicOrderCreated:
		return "Order received", "Your order has been placed and is waiting for a shipper.", true
	case events.TopicOrderAssigned:
		return "Shipper assigned", "A shipper has accepted your order.", true
	case events.TopicOrderInTransit:
		return "Order on the way", "Your order is out for delivery.", true
	case events.TopicOrderCompleted:
		return "Order delivered", "Your order has been delivered. Enjoy!", true
	case events.TopicOrderCancelled:
		return "Order cancelled", "Your order has been cancelled.", true
	case events.TopicLedgerAccrued:
		return "Delivery fee recorded", "The platform share for your completed delivery was added to your ledger.", true
	case events.TopicLedgerSettled:
		return "Settlement recorded", "A cash settlement was recorded on your ledger.", true
	default:
		return "", "", false
	}
}

// recipientsFor resolves which users should hear about the event. Order
// events go to the order's customer; guests have no push identity.
func (n *Notifier) recipientsFor(ctx context.Context, ev events.Event) ([]string, error) {
	switch ev.Topic {
	case events.TopicOrderCreated, events.TopicOrderAssigned, events.TopicOrderInTransit,
		events.TopicOrderCompleted, events.TopicOrderCancelled:
		row, err := n.Store.GetOrder(ctx, ev.AggregateID)
		if err != nil {
			return nil, fmt.Errorf("load order for notification: %w", err)
		}
		if row.CustomerID == nil {
			return nil, nil
		}
		return []string{*row.CustomerID}, nil
	case events.TopicLedgerAccrued, events.TopicLedgerSettled:
		// Ledger events aggregate on the shipper.
		if ev.AggregateID == "" {
			return nil, nil
		}
		return []string{ev.AggregateID}, nil
	default:
		return nil, nil
	}
}
