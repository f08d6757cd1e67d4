package store

import (
	"context"
	"time"
)

const promoColumns = `id, code, kind, value, max_discount, usage_limit, per_user_limit,
	duration_days, valid_from, valid_to, enabled, used_count, created_at, updated_at`

func scanPromo(row interface{ Scan(...any) error }) (Promo, error) {
	var p Promo
	err := row.Scan(&p.ID, &p.Code, &p.Kind, &p.Value, &p.MaxDiscount, &p.UsageLimit,
		&p.PerUserLimit, &p.DurationDays, &p.ValidFrom, &p.ValidTo, &p.Enabled,
		&p.UsedCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePromoParams carries the fields of a new promo definition.
type CreatePromoParams struct {
	Code         string
	Kind         string
	Value        int64
	MaxDiscount  *int64
	UsageLimit   *int32
	PerUserLimit *int32
	DurationDays *int32
	ValidFrom    *time.Time
	ValidTo      *time.Time
	Enabled      bool
}

// CreatePromo inserts a promo definition.
func (s *Store) CreatePromo(ctx context.Context, p CreatePromoParams) (Promo, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO promos (code, kind, value, max_discount, usage_limit, per_user_limit,
			duration_days, valid_from, valid_to, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+promoColumns,
		p.Code, p.Kind, p.Value, p.MaxDiscount, p.UsageLimit, p.PerUserLimit,
		p.DurationDays, p.ValidFrom, p.ValidTo, p.Enabled)
	return scanPromo(row)
}

// GetPromoByCode fetches a promo by its code.
func (s *Store) GetPromoByCode(ctx context.Context, code string) (Promo, error) {
	row := s.db.QueryRow(ctx, `SELECT `+promoColumns+` FROM promos WHERE code = $1`, code)
	return scanPromo(row)
}

// GetPromoByCodeForUpdate locks the promo row for a redemption transaction.
func (s *Store) GetPromoByCodeForUpdate(ctx context.Context, code string) (Promo, error) {
	row := s.db.QueryRow(ctx, `SELECT `+promoColumns+` FROM promos WHERE code = $1 FOR UPDATE`, code)
	return scanPromo(row)
}

// ListPromos returns all promo definitions newest first.
func (s *Store) ListPromos(ctx context.Context, limit, offset int32) ([]Promo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+promoColumns+` FROM promos
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var promos []Promo
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// UpdatePromoParams carries the mutable fields of a promo.
type UpdatePromoParams struct {
	ID           string
	Value        int64
	MaxDiscount  *int64
	UsageLimit   *int32
	PerUserLimit *int32
	DurationDays *int32
	ValidFrom    *time.Time
	ValidTo      *time.Time
	Enabled      bool
}

// UpdatePromo rewrites a promo's mutable fields.
func (s *Store) UpdatePromo(ctx context.Context, p UpdatePromoParams) (Promo, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE promos SET value = $2, max_discount = $3, usage_limit = $4,
			per_user_limit = $5, duration_days = $6, valid_from = $7, valid_to = $8,
			enabled = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+promoColumns,
		p.ID, p.Value, p.MaxDiscount, p.UsageLimit, p.PerUserLimit,
		p.DurationDays, p.ValidFrom, p.ValidTo, p.Enabled)
	return scanPromo(row)
}

// SetPromoEnabled toggles a promo on or off.
func (s *Store) SetPromoEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := s.db.Exec(ctx, `
		UPDATE promos SET enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
	return err
}

// IncrementPromoUsed bumps the global redemption counter.
func (s *Store) IncrementPromoUsed(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE promos SET used_count = used_count + 1, updated_at = now() WHERE id = $1`, id)
	return err
}

// CountPromoUsageByUser returns how many times a user has redeemed a promo.
func (s *Store) CountPromoUsageByUser(ctx context.Context, promoID, userID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM promo_usages
		WHERE promo_id = $1 AND user_id = $2`, promoID, userID).Scan(&n)
	return n, err
}

// InsertPromoUsage records one redemption. The unique (promo_id, order_id)
// constraint rejects a second redemption against the same order.
func (s *Store) InsertPromoUsage(ctx context.Context, promoID string, userID *string, orderID string, amount int64) (PromoUsage, error) {
	var u PromoUsage
	row := s.db.QueryRow(ctx, `
		INSERT INTO promo_usages (promo_id, user_id, order_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, promo_id, user_id, order_id, amount, created_at`,
		promoID, userID, orderID, amount)
	err := row.Scan(&u.ID, &u.PromoID, &u.UserID, &u.OrderID, &u.Amount, &u.CreatedAt)
	return u, err
}

// GetPromoUsageByOrder fetches the redemption recorded against an order, if any.
func (s *Store) GetPromoUsageByOrder(ctx context.Context, orderID string) (PromoUsage, error) {
	var u PromoUsage
	row := s.db.QueryRow(ctx, `
		SELECT id, promo_id, user_id, order_id, amount, created_at
		FROM promo_usages WHERE order_id = $1`, orderID)
	err := row.Scan(&u.ID, &u.PromoID, &u.UserID, &u.OrderID, &u.Amount, &u.CreatedAt)
	return u, err
}
