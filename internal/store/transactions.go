package store

import "context"

const transactionColumns = `id, shipper_id, amount, entry_type, description, order_id, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.ShipperID, &t.Amount, &t.EntryType, &t.Description, &t.OrderID, &t.CreatedAt)
	return t, err
}

// InsertTransaction appends one signed ledger entry. There is no update or
// delete path; corrections are new adjustment entries.
func (s *Store) InsertTransaction(ctx context.Context, shipperID string, amount int64, entryType, description string, orderID *string) (Transaction, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO transactions (shipper_id, amount, entry_type, description, order_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		shipperID, amount, entryType, description, orderID)
	return scanTransaction(row)
}

// ListTransactionsByShipper returns a shipper's ledger entries newest first.
func (s *Store) ListTransactionsByShipper(ctx context.Context, shipperID string, limit, offset int32) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE shipper_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, shipperID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

// ShipperBalance sums a shipper's signed entries. Positive means the shipper
// owes the platform.
func (s *Store) ShipperBalance(ctx context.Context, shipperID string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(sum(amount), 0) FROM transactions
		WHERE shipper_id = $1`, shipperID).Scan(&balance)
	return balance, err
}

// ShipperBalanceRow is one row of the admin balance overview.
type ShipperBalanceRow struct {
	ShipperID string
	Balance   int64
	Entries   int64
}

// ListShipperBalances aggregates every shipper's balance for the admin view.
func (s *Store) ListShipperBalances(ctx context.Context) ([]ShipperBalanceRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT shipper_id, COALESCE(sum(amount), 0), count(*)
		FROM transactions
		GROUP BY shipper_id
		ORDER BY 2 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []ShipperBalanceRow
	for rows.Next() {
		var r ShipperBalanceRow
		if err := rows.Scan(&r.ShipperID, &r.Balance, &r.Entries); err != nil {
			return nil, err
		}
		balances = append(balances, r)
	}
	return balances, rows.Err()
}
