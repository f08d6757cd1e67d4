package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ngocvh/backend-cho/internal/store"
)

const cacheKey = "settings:platform"

// Settings is the single platform configuration document. Monetary values are
// whole VND, shares are integer percentages.
type Settings struct {
	ShipFeeNormal int64 `json:"ship_fee_normal"`
	ShipFeeAtDoor int64 `json:"ship_fee_at_door"`
	// PerExtraShopFee is added once for each origin shop beyond the first.
	PerExtraShopFee int64 `json:"per_extra_shop_fee"`

	PlatformSharePct int32 `json:"platform_share_pct"`
	ShipperSharePct  int32 `json:"shipper_share_pct"`
	ManagerSharePct  int32 `json:"manager_share_pct"`

	// OrderTimeoutMinutes is configurable but not enforced: no expiry job
	// acts on it today.
	OrderTimeoutMinutes int32 `json:"order_timeout_minutes"`

	MaxShopsPerOrder int32 `json:"max_shops_per_order"`

	// MaxShopsPerType caps the distinct shops of one type in a single order.
	// Types without an entry are bounded by MaxShopsPerOrder alone.
	MaxShopsPerType map[string]int32 `json:"max_shops_per_type,omitempty"`
}

// Defaults returns the settings used before an admin writes any.
func Defaults() Settings {
	return Settings{
		ShipFeeNormal:       15000,
		ShipFeeAtDoor:       20000,
		PerExtraShopFee:     5000,
		PlatformSharePct:    20,
		ShipperSharePct:     70,
		ManagerSharePct:     10,
		OrderTimeoutMinutes: 30,
		MaxShopsPerOrder:    5,
	}
}

// Validate rejects documents that would corrupt pricing or revenue sharing.
func (s Settings) Validate() error {
	if s.ShipFeeNormal < 0 || s.ShipFeeAtDoor < 0 || s.PerExtraShopFee < 0 {
		return errors.New("settings: ship fees must not be negative")
	}
	if s.PlatformSharePct < 0 || s.ShipperSharePct < 0 || s.ManagerSharePct < 0 {
		return errors.New("settings: share percentages must not be negative")
	}
	if s.PlatformSharePct+s.ShipperSharePct+s.ManagerSharePct != 100 {
		return errors.New("settings: share percentages must sum to 100")
	}
	if s.MaxShopsPerOrder < 1 {
		return errors.New("settings: max shops per order must be at least 1")
	}
	for shopType, limit := range s.MaxShopsPerType {
		if strings.TrimSpace(shopType) == "" {
			return errors.New("settings: per-type shop cap needs a shop type")
		}
		if limit < 1 {
			return errors.New("settings: per-type shop caps must be at least 1")
		}
	}
	return nil
}

// Service reads and writes the settings document with a Redis read-through
// cache in front of Postgres.
type Service struct {
	Store    *store.Store
	Redis    *redis.Client
	CacheTTL time.Duration
	Log      zerolog.Logger
}

// Get returns the current settings, falling back to defaults when none have
// been stored yet.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var out Settings
			if err := json.Unmarshal(cached, &out); err == nil {
				return out, nil
			}
		}
	}

	data, _, err := s.Store.GetSettings(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.cache(ctx, out)
	return out, nil
}

// Update validates and stores a new settings document, refreshing the cache.
func (s *Service) Update(ctx context.Context, in Settings) (Settings, error) {
	if err := in.Validate(); err != nil {
		return Settings{}, err
	}
	encoded, err := json.Marshal(in)
	if err != nil {
		return Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.Store.UpsertSettings(ctx, encoded); err != nil {
		return Settings{}, fmt.Errorf("store settings: %w", err)
	}
	s.cache(ctx, in)
	return in, nil
}

func (s *Service) cache(ctx context.Context, in Settings) {
	if s.Redis == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	encoded, err := json.Marshal(in)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, cacheKey, encoded, ttl).Err(); err != nil {
		s.Log.Warn().Err(err).Msg("settings cache write failed")
	}
}
