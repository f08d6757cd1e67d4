package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	b := NewBreaker("push", 4, 0.5, time.Minute)

	b.Report(true)
	b.Report(false)
	b.Report(false)
	assert.Equal(t, Closed, b.CurrentState())

	b.Report(false)
	assert.Equal(t, Open, b.CurrentState())
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("push", 1, 0.5, 10*time.Millisecond)
	b.Report(false)
	require.Equal(t, Open, b.CurrentState())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow(), "cool-off expired, one probe admitted")
	assert.Equal(t, HalfOpen, b.CurrentState())

	b.Report(true)
	assert.Equal(t, Closed, b.CurrentState())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker("push", 1, 0.5, 10*time.Millisecond)
	b.Report(false)
	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Allow())

	b.Report(false)
	assert.Equal(t, Open, b.CurrentState())
}

func TestHTTPClientRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClientOpenBreakerShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewBreaker("push", 1, 0.5, time.Minute)
	b.Report(false)
	require.Equal(t, Open, b.CurrentState())

	cl := HTTPClient{Client: srv.Client(), Breaker: b, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = cl.Do(context.Background(), req)
	assert.ErrorIs(t, err, ErrOpenCircuit)
}

func TestBackoffGrowsExponentially(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, Backoff(100*time.Millisecond, 1, 0))
	assert.Equal(t, 200*time.Millisecond, Backoff(100*time.Millisecond, 2, 0))
	assert.Equal(t, 400*time.Millisecond, Backoff(100*time.Millisecond, 3, 0))
}
