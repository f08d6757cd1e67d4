package ledger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/events"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Service appends ledger entries and answers balance queries. Entries are
// never updated or deleted; corrections go through adjustments.
type Service struct {
	Store  *store.Store
	Events *events.Bus
	Log    zerolog.Logger
}

// Accrue appends the debt entry for a completed delivery. It runs on the
// transaction-scoped store of the completing operation so the status change
// and the accrual commit together. The amount is computed and rounded once
// here and persisted as-is.
func (s *Service) Accrue(ctx context.Context, q *store.Store, shipperID, orderID string, shipTotal int64, platformSharePct int, discountAttributed int64) (store.Transaction, error) {
	amount := AccrualAmount(shipTotal, platformSharePct, discountAttributed)
	entry, err := q.InsertTransaction(ctx, shipperID, amount, string(EntryTypeDebt),
		fmt.Sprintf("platform share for order %s", orderID), &orderID)
	if err != nil {
		return store.Transaction{}, fmt.Errorf("insert accrual: %w", err)
	}
	return entry, nil
}

// Settle records a cash handoff of the given magnitude for a shipper. The
// entry's sign is derived from the current balance so the handoff always
// moves the balance toward zero.
func (s *Service) Settle(ctx context.Context, shipperID string, amount int64, description string) (store.Transaction, int64, error) {
	var entry store.Transaction
	var newBalance int64
	err := s.Store.InTx(ctx, func(q *store.Store) error {
		balance, err := q.ShipperBalance(ctx, shipperID)
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		prototype, err := SettlementEntry(balance, amount)
		if err != nil {
			return common.NewAppError("VALIDATION_ERROR", "settlement amount must be positive", http.StatusBadRequest, err)
		}
		if description == "" {
			description = "cash settlement"
		}
		entry, err = q.InsertTransaction(ctx, shipperID, prototype.Amount, string(prototype.Type), description, nil)
		if err != nil {
			return fmt.Errorf("insert settlement: %w", err)
		}
		newBalance = balance + prototype.Amount
		return nil
	})
	if err != nil {
		return store.Transaction{}, 0, err
	}
	s.emit(ctx, events.TopicLedgerSettled, shipperID, map[string]any{
		"entry_id": entry.ID,
		"amount":   entry.Amount,
		"balance":  newBalance,
	})
	return entry, newBalance, nil
}

func (s *Service) emit(ctx context.Context, topic, aggregateID string, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.Log.Warn().Err(err).Str("topic", topic).Str("shipper_id", aggregateID).Msg("event emit incomplete")
	}
}

// Adjust appends a signed adjustment entry compensating an earlier mistake.
func (s *Service) Adjust(ctx context.Context, shipperID string, amount int64, description string) (store.Transaction, error) {
	if amount == 0 {
		return store.Transaction{}, common.NewAppError("VALIDATION_ERROR", "adjustment amount must not be zero", http.StatusBadRequest, nil)
	}
	if description == "" {
		return store.Transaction{}, common.NewAppError("VALIDATION_ERROR", "adjustment requires a description", http.StatusBadRequest, nil)
	}
	entry, err := s.Store.InsertTransaction(ctx, shipperID, amount, string(EntryTypeAdjustment), description, nil)
	if err != nil {
		return store.Transaction{}, fmt.Errorf("insert adjustment: %w", err)
	}
	return entry, nil
}

// BalanceSummary is the balance view returned to shippers and admins.
type BalanceSummary struct {
	ShipperID string `json:"shipper_id"`
	Balance   int64  `json:"balance"`
	Direction string `json:"direction"`
}

// BalanceFor sums a shipper's entries and labels the direction.
func (s *Service) BalanceFor(ctx context.Context, shipperID string) (BalanceSummary, error) {
	balance, err := s.Store.ShipperBalance(ctx, shipperID)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("read balance: %w", err)
	}
	return BalanceSummary{
		ShipperID: shipperID,
		Balance:   balance,
		Direction: SettlementDirection(balance),
	}, nil
}

// History returns a shipper's entries newest first.
func (s *Service) History(ctx context.Context, shipperID string, limit, offset int32) ([]store.Transaction, error) {
	entries, err := s.Store.ListTransactionsByShipper(ctx, shipperID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return entries, nil
}
