package ledger

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidAmount is returned when a settlement magnitude is not positive.
var ErrInvalidAmount = errors.New("ledger: amount must be positive")

// EntryType classifies an immutable ledger entry.
type EntryType string

const (
	// EntryTypeDebt accrues platform share when a delivery completes.
	EntryTypeDebt EntryType = "debt"
	// EntryTypePayment records a cash handoff between shipper and platform.
	EntryTypePayment EntryType = "payment"
	// EntryTypeAdjustment compensates an earlier entry; entries are never edited.
	EntryTypeAdjustment EntryType = "adjustment"
)

var validEntryTypes = []EntryType{EntryTypeDebt, EntryTypePayment, EntryTypeAdjustment}

// IsValid reports whether the value is a known entry type.
func (t EntryType) IsValid() bool {
	for _, candidate := range validEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEntryType converts raw input into an EntryType.
func ParseEntryType(value string) (EntryType, error) {
	for _, candidate := range validEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}

// Entry is one signed, append-only ledger row for a shipper. A positive
// amount means the shipper owes the platform; negative means the platform
// owes the shipper. Amounts are whole VND so repeated small entries cannot
// accumulate floating-point drift.
type Entry struct {
	ID          string
	ShipperID   string
	Amount      int64
	Type        EntryType
	Description string
	OrderID     string
	CreatedAt   time.Time
}

// Balance sums the signed amounts of all entries. Addition is commutative,
// so replaying history in any order yields the same balance.
func Balance(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

// AccrualAmount computes the debt accrued against a shipper when a delivery
// completes: the platform's share of the collected shipping fee minus any
// discount attributed to the order. The share is rounded half-up exactly
// once here; callers must persist the returned amount, never recompute it.
func AccrualAmount(shipTotal int64, platformSharePct int, discountAttributed int64) int64 {
	if platformSharePct < 0 {
		platformSharePct = 0
	}
	share := shipTotal * int64(platformSharePct)
	rounded := (share + 50) / 100
	if share < 0 {
		rounded = (share - 50) / 100
	}
	return rounded - discountAttributed
}

// SettlementEntry builds the entry for a cash handoff of the given magnitude.
// Its sign is chosen so appending it moves the balance toward zero: a shipper
// in debt pays down (negative entry), a shipper in credit gets paid out
// (positive entry). The magnitude is always caller-supplied.
func SettlementEntry(currentBalance, amount int64) (Entry, error) {
	if amount <= 0 {
		return Entry{}, ErrInvalidAmount
	}
	signed := -amount
	if currentBalance < 0 {
		signed = amount
	}
	return Entry{
		Amount: signed,
		Type:   EntryTypePayment,
	}, nil
}

// SettlementDirection labels who pays whom for the given balance, matching
// the single sign convention used everywhere: positive = shipper owes
// platform.
func SettlementDirection(balance int64) string {
	switch {
	case balance > 0:
		return "shipper_owes_platform"
	case balance < 0:
		return "platform_owes_shipper"
	default:
		return "settled"
	}
}
