package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocvh/backend-cho/internal/events"
)

func TestMessageForCoversLedgerTopics(t *testing.T) {
	title, body, ok := messageFor(events.TopicLedgerAccrued)
	require.True(t, ok)
	assert.NotEmpty(t, title)
	assert.NotEmpty(t, body)

	title, body, ok = messageFor(events.TopicLedgerSettled)
	require.True(t, ok)
	assert.NotEmpty(t, title)
	assert.NotEmpty(t, body)
}

func TestMessageForUnknownTopicProducesNoPush(t *testing.T) {
	_, _, ok := messageFor("promo.created")
	assert.False(t, ok)
}

func TestRecipientsForLedgerEventsIsTheShipper(t *testing.T) {
	n := &Notifier{}

	got, err := n.recipientsFor(context.Background(), events.Event{
		Topic:       events.TopicLedgerSettled,
		AggregateID: "shipper-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shipper-1"}, got)

	got, err = n.recipientsFor(context.Background(), events.Event{Topic: events.TopicLedgerAccrued})
	require.NoError(t, err)
	assert.Empty(t, got)
}
