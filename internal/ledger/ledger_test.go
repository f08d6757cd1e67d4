package ledger

import (
	"errors"
	"math/rand"
	"testing"
)

func TestBalanceSignedSum(t *testing.T) {
	entries := []Entry{
		{Amount: 30_000, Type: EntryTypeDebt},
		{Amount: 20_000, Type: EntryTypeDebt},
		{Amount: -45_000, Type: EntryTypePayment},
	}
	if got := Balance(entries); got != 5_000 {
		t.Fatalf("expected balance 5000, got %d", got)
	}
}

func TestBalanceOrderIndependent(t *testing.T) {
	entries := []Entry{
		{Amount: 12_345}, {Amount: -9_999}, {Amount: 777}, {Amount: -3_000}, {Amount: 41},
	}
	want := Balance(entries)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]Entry, len(entries))
		copy(shuffled, entries)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Balance(shuffled); got != want {
			t.Fatalf("balance changed under reordering: %d != %d", got, want)
		}
	}
}

func TestSettlementMovesBalanceTowardZero(t *testing.T) {
	entry, err := SettlementEntry(5_000, 5_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Amount != -5_000 {
		t.Fatalf("shipper in debt must pay down, got %d", entry.Amount)
	}
	if entry.Type != EntryTypePayment {
		t.Fatalf("expected payment entry, got %s", entry.Type)
	}

	entry, err = SettlementEntry(-8_000, 3_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Amount != 3_000 {
		t.Fatalf("platform in debt must pay out, got %d", entry.Amount)
	}
}

func TestSettlementRejectsNonPositiveAmount(t *testing.T) {
	if _, err := SettlementEntry(1_000, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := SettlementEntry(1_000, -500); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAccrualAmountRoundsOnce(t *testing.T) {
	// 25% of 11000 is 2750 exactly.
	if got := AccrualAmount(11_000, 25, 0); got != 2_750 {
		t.Fatalf("expected 2750, got %d", got)
	}
	// 33% of 11111 is 3666.63, rounds half-up to 3667.
	if got := AccrualAmount(11_111, 33, 0); got != 3_667 {
		t.Fatalf("expected 3667, got %d", got)
	}
	// Discount attributed to the order reduces the accrual.
	if got := AccrualAmount(11_000, 25, 3_000); got != -250 {
		t.Fatalf("expected -250, got %d", got)
	}
}

func TestParseEntryType(t *testing.T) {
	for _, v := range []string{"debt", "payment", "adjustment"} {
		parsed, err := ParseEntryType(v)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", v, err)
		}
		if !parsed.IsValid() {
			t.Fatalf("parsed type %q reported invalid", v)
		}
	}
	if _, err := ParseEntryType("refund"); err == nil {
		t.Fatal("expected unknown type to fail")
	}
}

func TestSettlementDirection(t *testing.T) {
	if SettlementDirection(100) != "shipper_owes_platform" {
		t.Fatal("positive balance must mean shipper owes platform")
	}
	if SettlementDirection(-100) != "platform_owes_shipper" {
		t.Fatal("negative balance must mean platform owes shipper")
	}
	if SettlementDirection(0) != "settled" {
		t.Fatal("zero balance must be settled")
	}
}
