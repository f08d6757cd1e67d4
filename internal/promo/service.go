package promo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

// ErrNotFound is returned when no promo carries the requested code.
var ErrNotFound = errors.New("promo not found")

// Service resolves promo codes against the database.
type Service struct {
	Store *store.Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Preview resolves a code against a prospective order without consuming any
// quota. userID may be empty for guests.
func (s *Service) Preview(ctx context.Context, code, userID string, subtotal, shipFee int64) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ErrNotFound
	}
	row, err := s.Store.GetPromoByCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get promo: %w", err)
	}
	rule, err := s.toRule(ctx, s.Store, row, userID)
	if err != nil {
		return 0, err
	}
	return Resolve(rule, s.now(), subtotal, shipFee)
}

// Redeem resolves a code and consumes quota for orderID. It must run on a
// transaction-scoped store: the promo row is locked so the usage counter
// cannot be oversubscribed by concurrent checkouts, and the unique usage
// constraint rejects double redemption for one order.
func (s *Service) Redeem(ctx context.Context, q *store.Store, code string, userID *string, orderID string, subtotal, shipFee int64) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ErrNotFound
	}
	row, err := q.GetPromoByCodeForUpdate(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get promo: %w", err)
	}
	uid := ""
	if userID != nil {
		uid = *userID
	}
	rule, err := s.toRule(ctx, q, row, uid)
	if err != nil {
		return 0, err
	}
	discount, err := Resolve(rule, s.now(), subtotal, shipFee)
	if err != nil {
		return 0, err
	}
	if _, err := q.InsertPromoUsage(ctx, row.ID, userID, orderID, discount); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, common.NewAppError("PROMO_ALREADY_APPLIED", "promo already applied to this order", http.StatusConflict, err)
		}
		return 0, fmt.Errorf("record promo usage: %w", err)
	}
	if err := q.IncrementPromoUsed(ctx, row.ID); err != nil {
		return 0, fmt.Errorf("increment promo usage: %w", err)
	}
	return discount, nil
}

func (s *Service) toRule(ctx context.Context, q *store.Store, row store.Promo, userID string) (Rule, error) {
	rule := Rule{
		Code:         row.Code,
		Kind:         row.Kind,
		Value:        row.Value,
		MaxDiscount:  row.MaxDiscount,
		UsageLimit:   row.UsageLimit,
		UsedCount:    row.UsedCount,
		PerUserLimit: row.PerUserLimit,
		Enabled:      row.Enabled,
		CreatedAt:    row.CreatedAt,
		DurationDays: row.DurationDays,
		ValidFrom:    row.ValidFrom,
		ValidTo:      row.ValidTo,
	}
	if row.PerUserLimit != nil && userID != "" {
		used, err := q.CountPromoUsageByUser(ctx, row.ID, userID)
		if err != nil {
			return Rule{}, fmt.Errorf("count promo usage: %w", err)
		}
		rule.PerUserUsed = int32(used)
	}
	return rule, nil
}

// AsAppError maps resolution failures onto the HTTP error envelope. The
// distinct codes let clients explain a rejection instead of showing zero
// discount.
func AsAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return common.NewAppError("PROMO_NOT_FOUND", "promo code not found", http.StatusNotFound, err)
	case errors.Is(err, ErrDisabled):
		return common.NewAppError("PROMO_DISABLED", "promo code is disabled", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNotStarted):
		return common.NewAppError("PROMO_NOT_STARTED", "promo code is not active yet", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrExpired):
		return common.NewAppError("PROMO_EXPIRED", "promo code has expired", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrUsageLimitReached):
		return common.NewAppError("PROMO_EXHAUSTED", "promo code usage limit reached", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrPerUserLimitReached):
		return common.NewAppError("PROMO_PER_USER_LIMIT", "promo code already used the maximum number of times", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNotEligible):
		return common.NewAppError("PROMO_NOT_ELIGIBLE", "promo code cannot be applied to this order", http.StatusUnprocessableEntity, err)
	default:
		return err
	}
}
