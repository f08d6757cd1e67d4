package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocvh/backend-cho/internal/common"
)

func newMiddleware(t *testing.T, formatted string) func(http.Handler) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewStore(client, "rl-test")
	require.NoError(t, err)
	l, err := New(store, formatted)
	require.NoError(t, err)
	return Middleware(l, ByClientIP, nil)
}

func TestMiddlewareEnforcesLimit(t *testing.T) {
	handler := newMiddleware(t, "2-M")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestByUserFallsBackToIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/accept", nil)
	assert.NotEmpty(t, ByUser(req))

	req = req.WithContext(common.WithUserID(req.Context(), "shipper-1"))
	assert.Equal(t, "u:shipper-1", ByUser(req))
}

func TestNewRejectsMalformedRate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewStore(client, "rl-test")
	require.NoError(t, err)
	_, err = New(store, "not-a-rate")
	assert.Error(t, err)
}
