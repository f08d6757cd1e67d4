package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ngocvh/backend-cho/internal/lock"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Querier defines the database access required for analytics.
type Querier interface {
	GetDailySales(ctx context.Context, from, to time.Time) ([]store.DailySalesRow, error)
	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
	GetTopItems(ctx context.Context, limit, offset int32) ([]store.TopItemRow, error)
}

// Service provides cached aggregates over completed orders.
type Service struct {
	Q    Querier
	R    *redis.Client
	TTL  time.Duration
	Lock *lock.Locker
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Overview summarises the order book for the admin dashboard.
type Overview struct {
	Statuses map[string]int64      `json:"statuses"`
	Last7    []store.DailySalesRow `json:"last_7_days"`
}

// GetOverview returns status counts plus a rolling 7-day sales series. A
// distributed lock serialises recomputation of the expired key so concurrent
// dashboard loads do not stampede the database.
func (s *Service) GetOverview(ctx context.Context) (Overview, error) {
	var out Overview
	key := "an:overview"
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	compute := func(ctx context.Context) error {
		statuses, err := s.Q.CountOrdersByStatus(ctx)
		if err != nil {
			return err
		}
		to := s.now().Truncate(24 * time.Hour).Add(24 * time.Hour)
		series, err := s.Q.GetDailySales(ctx, to.AddDate(0, 0, -7), to)
		if err != nil {
			return err
		}
		out = Overview{Statuses: statuses, Last7: series}
		s.cache(ctx, key, out)
		return nil
	}
	if s.Lock != nil {
		err := s.Lock.WithLock(ctx, key+":lock", 10*time.Second, func(ctx context.Context) error {
			if s.fromCache(ctx, key, &out) {
				return nil
			}
			return compute(ctx)
		})
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return Overview{}, err
		}
		// lock unavailable: compute without coordination
	}
	if err := compute(ctx); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// SalesRange returns the daily sales series, from inclusive, to exclusive.
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) ([]store.DailySalesRow, error) {
	key := fmt.Sprintf("an:sales:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var rows []store.DailySalesRow
	if s.fromCache(ctx, key, &rows) {
		return rows, nil
	}
	rows, err := s.Q.GetDailySales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, key, rows)
	return rows, nil
}

// TopItems returns best sellers ordered by quantity sold.
func (s *Service) TopItems(ctx context.Context, limit, offset int32) ([]store.TopItemRow, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	key := fmt.Sprintf("an:top:%d:%d", limit, offset)
	var rows []store.TopItemRow
	if s.fromCache(ctx, key, &rows) {
		return rows, nil
	}
	rows, err := s.Q.GetTopItems(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, key, rows)
	return rows, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) cache(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
