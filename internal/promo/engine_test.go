package promo

import (
	"errors"
	"testing"
	"time"
)

func TestComputePercentCapped(t *testing.T) {
	max := int64(50_000)
	rule := Rule{Kind: KindPercent, Value: 10, MaxDiscount: &max}
	if got := Compute(rule, 1_000_000, 0); got != 50_000 {
		t.Fatalf("expected capped discount 50000, got %d", got)
	}
}

func TestComputePercentUncapped(t *testing.T) {
	rule := Rule{Kind: KindPercent, Value: 10}
	if got := Compute(rule, 1_000_000, 0); got != 100_000 {
		t.Fatalf("expected discount 100000, got %d", got)
	}
}

func TestComputeFixedCappedToPayable(t *testing.T) {
	rule := Rule{Kind: KindFixed, Value: 80_000}
	if got := Compute(rule, 30_000, 11_000); got != 41_000 {
		t.Fatalf("expected discount capped at 41000, got %d", got)
	}
}

func TestComputeFreeShip(t *testing.T) {
	rule := Rule{Kind: KindFreeShip, Value: 20_000}
	if got := Compute(rule, 100_000, 15_000); got != 15_000 {
		t.Fatalf("expected discount 15000, got %d", got)
	}
	rule.Value = 10_000
	if got := Compute(rule, 100_000, 15_000); got != 10_000 {
		t.Fatalf("expected discount 10000, got %d", got)
	}
}

func TestValidateDisabled(t *testing.T) {
	rule := Rule{Kind: KindFixed, Value: 1_000, Enabled: false}
	if err := rule.Validate(time.Now()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestValidateDurationWindow(t *testing.T) {
	days := int32(7)
	rule := Rule{
		Kind:         KindFixed,
		Value:        1_000,
		Enabled:      true,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationDays: &days,
	}
	inside := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if err := rule.Validate(inside); err != nil {
		t.Fatalf("expected valid inside window, got %v", err)
	}
	outside := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	if err := rule.Validate(outside); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestValidateLimits(t *testing.T) {
	limit := int32(100)
	perUser := int32(2)
	rule := Rule{
		Kind:         KindFixed,
		Value:        1_000,
		Enabled:      true,
		UsageLimit:   &limit,
		UsedCount:    100,
		PerUserLimit: &perUser,
	}
	if err := rule.Validate(time.Now()); !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("expected ErrUsageLimitReached, got %v", err)
	}
	rule.UsedCount = 10
	rule.PerUserUsed = 2
	if err := rule.Validate(time.Now()); !errors.Is(err, ErrPerUserLimitReached) {
		t.Fatalf("expected ErrPerUserLimitReached, got %v", err)
	}
}

func TestResolveRejectionIsDistinctFromZero(t *testing.T) {
	rule := Rule{Kind: KindFreeShip, Value: 20_000, Enabled: false}
	discount, err := Resolve(rule, time.Now(), 100_000, 0)
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if discount != 0 {
		t.Fatalf("rejected promo must not yield a discount, got %d", discount)
	}

	// An enabled free-ship promo on an order with no ship fee is a valid zero.
	rule.Enabled = true
	discount, err = Resolve(rule, time.Now(), 100_000, 0)
	if err != nil {
		t.Fatalf("expected applicable promo, got %v", err)
	}
	if discount != 0 {
		t.Fatalf("expected zero discount, got %d", discount)
	}
}
