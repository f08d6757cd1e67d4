package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelaySendPostsMessage(t *testing.T) {
	var got pushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	relay := NewRelay(srv.URL, time.Second)
	err := relay.Send(context.Background(), []string{"ExponentPushToken[abc]"}, "Order delivered", "Enjoy!", map[string]any{"order_id": "o1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[abc]"}, got.To)
	assert.Equal(t, "Order delivered", got.Title)
}

func TestRelaySendFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	relay := NewRelay(srv.URL, time.Second)
	err := relay.Send(context.Background(), []string{"tok"}, "t", "b", nil)
	require.Error(t, err)
}

func TestRelaySendNoTokensIsNoop(t *testing.T) {
	relay := NewRelay("http://unreachable.invalid", time.Second)
	require.NoError(t, relay.Send(context.Background(), nil, "t", "b", nil))
}
