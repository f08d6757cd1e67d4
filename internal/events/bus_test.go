package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	topics   []string
	payloads []string
	err      error
}

func (s *recordingStore) InsertDomainEvent(_ context.Context, topic, aggregateID string, payload json.RawMessage) error {
	if s.err != nil {
		return s.err
	}
	s.topics = append(s.topics, topic)
	s.payloads = append(s.payloads, string(payload))
	return nil
}

type recordingNotifier struct {
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.events = append(n.events, ev)
	return n.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &recordingStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), TopicOrderCreated, "order-1", map[string]any{"total": 101000})
	require.NoError(t, err)
	assert.Equal(t, TopicOrderCreated, ev.Topic)
	require.Len(t, store.topics, 1)
	assert.JSONEq(t, `{"total":101000}`, store.payloads[0])
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "order-1", notifier.events[0].AggregateID)
}

func TestEmitNilPayloadDefaultsToEmptyObject(t *testing.T) {
	store := &recordingStore{}
	bus := &Bus{Store: store}

	_, err := bus.Emit(context.Background(), TopicLedgerSettled, "shipper-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", store.payloads[0])
}

func TestEmitRejectsInvalidJSONString(t *testing.T) {
	bus := &Bus{Store: &recordingStore{}}

	_, err := bus.Emit(context.Background(), TopicOrderCreated, "order-1", "{not json")
	require.Error(t, err)
}

func TestEmitNotifierFailureDoesNotDropEvent(t *testing.T) {
	store := &recordingStore{}
	failing := &recordingNotifier{err: errors.New("push relay down")}
	bus := &Bus{Store: store, Notifiers: []Notifier{failing}}

	ev, err := bus.Emit(context.Background(), TopicOrderCompleted, "order-2", nil)
	require.Error(t, err)
	assert.Equal(t, TopicOrderCompleted, ev.Topic)
	assert.Len(t, store.topics, 1)
}

func TestEmitRequiresTopicAndAggregate(t *testing.T) {
	bus := &Bus{Store: &recordingStore{}}

	_, err := bus.Emit(context.Background(), "  ", "order-1", nil)
	assert.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicOrderCreated, "", nil)
	assert.Error(t, err)
}
