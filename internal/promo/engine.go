package promo

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotEligible is returned when the promo cannot be applied to the provided order.
	ErrNotEligible = errors.New("promo not eligible")
	// ErrDisabled is returned when the promo exists but has been switched off.
	ErrDisabled = errors.New("promo disabled")
	// ErrNotStarted is returned when the promo validity window has not opened yet.
	ErrNotStarted = errors.New("promo not started")
	// ErrExpired is returned when the promo validity window has closed.
	ErrExpired = errors.New("promo expired")
	// ErrUsageLimitReached indicates the promo has exhausted its global quota.
	ErrUsageLimitReached = errors.New("promo usage limit reached")
	// ErrPerUserLimitReached indicates the caller exceeded the per-user allowance.
	ErrPerUserLimitReached = errors.New("promo per-user usage limit reached")
)

// Promo kinds. Stored explicitly so a rule's behavior never depends on which
// value fields happen to be set.
const (
	KindPercent  = "percent"
	KindFixed    = "fixed"
	KindFreeShip = "freeship"
)

// Rule captures the runtime constraints of a promo code.
type Rule struct {
	Code         string
	Kind         string
	Value        int64
	MaxDiscount  *int64
	UsageLimit   *int32
	UsedCount    int32
	PerUserLimit *int32
	PerUserUsed  int32
	Enabled      bool
	CreatedAt    time.Time
	DurationDays *int32
	ValidFrom    *time.Time
	ValidTo      *time.Time
}

// Window resolves the effective validity window of the rule. Explicit bounds
// win; otherwise the window runs DurationDays from creation. A nil bound
// means unbounded on that side.
func (r Rule) Window() (from, to *time.Time) {
	from = r.ValidFrom
	to = r.ValidTo
	if to == nil && r.DurationDays != nil && *r.DurationDays > 0 && !r.CreatedAt.IsZero() {
		end := r.CreatedAt.Add(time.Duration(*r.DurationDays) * 24 * time.Hour)
		to = &end
	}
	return from, to
}

// Validate reports whether the rule may be applied at the provided instant.
// A failure is always one of the sentinel errors above so callers can tell
// the user why the code was rejected instead of silently applying zero.
func (r Rule) Validate(now time.Time) error {
	if !r.Enabled {
		return ErrDisabled
	}
	from, to := r.Window()
	if from != nil && now.Before(*from) {
		return ErrNotStarted
	}
	if to != nil && now.After(*to) {
		return ErrExpired
	}
	if r.UsageLimit != nil && *r.UsageLimit >= 0 && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	if r.PerUserLimit != nil && *r.PerUserLimit > 0 && r.PerUserUsed >= *r.PerUserLimit {
		return ErrPerUserLimitReached
	}
	return nil
}

// Compute determines the discount amount for the rule against the order
// subtotal and shipping fee. It never returns a negative amount and never
// exceeds the payable amount.
func Compute(r Rule, subtotal, shipFee int64) int64 {
	if subtotal < 0 {
		subtotal = 0
	}
	if shipFee < 0 {
		shipFee = 0
	}
	var discount int64
	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case KindPercent:
		discount = subtotal * r.Value / 100
		if r.MaxDiscount != nil && discount > *r.MaxDiscount {
			discount = *r.MaxDiscount
		}
	case KindFixed:
		discount = r.Value
		if payable := subtotal + shipFee; discount > payable {
			discount = payable
		}
	case KindFreeShip:
		discount = r.Value
		if discount > shipFee {
			discount = shipFee
		}
	default:
		return 0
	}
	if discount < 0 {
		return 0
	}
	return discount
}

// Resolve validates the rule and computes the discount in one step. The
// returned error is non-nil exactly when the promo is not applicable, which
// is distinct from an applicable promo worth zero.
func Resolve(r Rule, now time.Time, subtotal, shipFee int64) (int64, error) {
	if err := r.Validate(now); err != nil {
		return 0, err
	}
	return Compute(r, subtotal, shipFee), nil
}
