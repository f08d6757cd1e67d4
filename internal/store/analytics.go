package store

import (
	"context"
	"time"
)

// DailySalesRow aggregates completed orders for one day.
type DailySalesRow struct {
	Day      time.Time `json:"day"`
	Orders   int64     `json:"orders"`
	Gross    int64     `json:"gross"`
	Discount int64     `json:"discount"`
	ShipFees int64     `json:"ship_fees"`
}

// GetDailySales aggregates completed orders per day, from inclusive, to
// exclusive.
func (s *Store) GetDailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       count(*),
		       COALESCE(sum(total), 0),
		       COALESCE(sum(discount), 0),
		       COALESCE(sum(base_ship_fee + surcharge), 0)
		FROM orders
		WHERE status = 'completed' AND created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailySalesRow
	for rows.Next() {
		var r DailySalesRow
		if err := rows.Scan(&r.Day, &r.Orders, &r.Gross, &r.Discount, &r.ShipFees); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountOrdersByStatus returns order counts keyed by status.
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT status, count(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// TopItemRow is one row of the best-seller ranking.
type TopItemRow struct {
	ItemID  string `json:"item_id"`
	Name    string `json:"name"`
	QtySold int64  `json:"qty_sold"`
	Revenue int64  `json:"revenue"`
}

// GetTopItems ranks items by quantity sold across completed orders.
func (s *Store) GetTopItems(ctx context.Context, limit, offset int32) ([]TopItemRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT oi.item_id, oi.name, sum(oi.qty), sum(oi.qty * oi.unit_price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'completed' AND oi.status = 'active'
		GROUP BY oi.item_id, oi.name
		ORDER BY 3 DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopItemRow
	for rows.Next() {
		var r TopItemRow
		if err := rows.Scan(&r.ItemID, &r.Name, &r.QtySold, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
