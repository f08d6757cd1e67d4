package ratelimit

import (
	"net/http"
	"strconv"

	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	redis "github.com/redis/go-redis/v9"

	"github.com/ngocvh/backend-cho/internal/common"
)

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(*http.Request) string

// ByClientIP buckets requests by remote address.
func ByClientIP(r *http.Request) string {
	return common.ClientIP(r)
}

// ByUser buckets by authenticated user id, falling back to client IP.
func ByUser(r *http.Request) string {
	if uid, ok := common.UserID(r.Context()); ok {
		return "u:" + uid
	}
	return ByClientIP(r)
}

// NewStore builds a limiter store backed by Redis.
func NewStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: prefix})
}

// New parses a rate in "limit-period" form ("10-M", "100-H") and returns a
// limiter over the given store.
func New(store limiter.Store, formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

// Middleware enforces the limit before delegating to the next handler.
// Limiter backend failures fail open.
func Middleware(l *limiter.Limiter, key KeyFunc, onError func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := l.Get(r.Context(), key(r))
			if err != nil {
				if onError != nil {
					onError(err)
				}
				next.ServeHTTP(w, r)
				return
			}

			headers := w.Header()
			headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
