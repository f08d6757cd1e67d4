package store

import (
	"context"
	"encoding/json"
	"fmt"
)

const orderColumns = `id, customer_id, guest_id, shipper_id, status, ship_type,
	subtotal, base_ship_fee, surcharge, discount, total, promo_code, address, note,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.GuestID, &o.ShipperID, &o.Status, &o.ShipType,
		&o.Subtotal, &o.BaseShipFee, &o.Surcharge, &o.Discount, &o.Total, &o.PromoCode,
		&o.Address, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrderParams carries the fields of a new order row.
type CreateOrderParams struct {
	CustomerID  *string
	GuestID     *string
	ShipType    string
	Subtotal    int64
	BaseShipFee int64
	Surcharge   int64
	Discount    int64
	Total       int64
	PromoCode   *string
	Address     json.RawMessage
	Note        *string
}

// CreateOrder inserts a new order in pending status.
func (s *Store) CreateOrder(ctx context.Context, p CreateOrderParams) (Order, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO orders (customer_id, guest_id, ship_type, subtotal, base_ship_fee,
			surcharge, discount, total, promo_code, address, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+orderColumns,
		p.CustomerID, p.GuestID, p.ShipType, p.Subtotal, p.BaseShipFee,
		p.Surcharge, p.Discount, p.Total, p.PromoCode, p.Address, p.Note)
	return scanOrder(row)
}

// GetOrder fetches an order by id.
func (s *Store) GetOrder(ctx context.Context, id string) (Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetOrderForUpdate fetches an order with a row lock; call inside a transaction.
func (s *Store) GetOrderForUpdate(ctx context.Context, id string) (Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	return scanOrder(row)
}

// AcceptOrder assigns a shipper to a pending, unassigned order. It returns
// false when the order was already taken or is no longer pending, so
// concurrent accepts resolve to exactly one winner.
func (s *Store) AcceptOrder(ctx context.Context, orderID, shipperID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET shipper_id = $2, status = 'assigned', updated_at = now()
		WHERE id = $1 AND status = 'pending' AND shipper_id IS NULL`,
		orderID, shipperID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateOrderStatus moves an order from one status to another. The expected
// current status is part of the predicate so stale transitions do not apply.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, from, to string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		orderID, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateOrderTotals rewrites the stored money fields after a line item change.
func (s *Store) UpdateOrderTotals(ctx context.Context, orderID string, subtotal, surcharge, discount, total int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE orders SET subtotal = $2, surcharge = $3, discount = $4, total = $5, updated_at = now()
		WHERE id = $1`,
		orderID, subtotal, surcharge, discount, total)
	return err
}

// ListPendingOrders returns unassigned orders oldest first, for the shipper feed.
func (s *Store) ListPendingOrders(ctx context.Context, limit, offset int32) ([]Order, error) {
	return s.listOrders(ctx, `WHERE status = 'pending' AND shipper_id IS NULL ORDER BY created_at`, limit, offset)
}

// ListOrdersByCustomer returns a customer's orders newest first.
func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID string, limit, offset int32) ([]Order, error) {
	return s.listOrders(ctx, `WHERE customer_id = $1 ORDER BY created_at DESC`, limit, offset, customerID)
}

// ListOrdersByShipper returns orders assigned to a shipper newest first.
func (s *Store) ListOrdersByShipper(ctx context.Context, shipperID string, limit, offset int32) ([]Order, error) {
	return s.listOrders(ctx, `WHERE shipper_id = $1 ORDER BY created_at DESC`, limit, offset, shipperID)
}

// ListOrders returns all orders newest first, optionally filtered by status.
func (s *Store) ListOrders(ctx context.Context, status string, limit, offset int32) ([]Order, error) {
	if status != "" {
		return s.listOrders(ctx, `WHERE status = $1 ORDER BY created_at DESC`, limit, offset, status)
	}
	return s.listOrders(ctx, `ORDER BY created_at DESC`, limit, offset)
}

func (s *Store) listOrders(ctx context.Context, tail string, limit, offset int32, args ...any) ([]Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders %s LIMIT %d OFFSET %d`, orderColumns, tail, limit, offset)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const orderItemColumns = `id, order_id, item_id, shop_id, name, qty, unit_price, toppings, status, created_at`

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var it OrderItem
	var toppings []byte
	err := row.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.ShopID, &it.Name, &it.Qty,
		&it.UnitPrice, &toppings, &it.Status, &it.CreatedAt)
	if err != nil {
		return OrderItem{}, err
	}
	if err := json.Unmarshal(toppings, &it.Toppings); err != nil {
		return OrderItem{}, fmt.Errorf("decode toppings: %w", err)
	}
	return it, nil
}

// CreateOrderItem inserts one line of an order.
func (s *Store) CreateOrderItem(ctx context.Context, orderID, itemID, shopID, name string, qty int32, unitPrice int64, toppings []Topping) (OrderItem, error) {
	encoded, err := json.Marshal(toppings)
	if err != nil {
		return OrderItem{}, fmt.Errorf("encode toppings: %w", err)
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, item_id, shop_id, name, qty, unit_price, toppings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderItemColumns,
		orderID, itemID, shopID, name, qty, unitPrice, encoded)
	return scanOrderItem(row)
}

// ListOrderItems returns all lines of an order, cancelled ones included.
func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CancelOrderItem marks one active line as cancelled.
func (s *Store) CancelOrderItem(ctx context.Context, orderID, lineID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE order_items SET status = 'cancelled'
		WHERE id = $1 AND order_id = $2 AND status = 'active'`,
		lineID, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CountActiveOrderItems returns how many lines of an order remain active.
func (s *Store) CountActiveOrderItems(ctx context.Context, orderID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM order_items
		WHERE order_id = $1 AND status = 'active'`, orderID).Scan(&n)
	return n, err
}

// CreateOrderEvent appends one row to the order's event log.
func (s *Store) CreateOrderEvent(ctx context.Context, orderID, status, note string) (OrderEvent, error) {
	var e OrderEvent
	row := s.db.QueryRow(ctx, `
		INSERT INTO order_events (order_id, status, note)
		VALUES ($1, $2, $3)
		RETURNING id, order_id, status, note, created_at`,
		orderID, status, note)
	err := row.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt)
	return e, err
}

// ListOrderEvents returns an order's event log oldest first.
func (s *Store) ListOrderEvents(ctx context.Context, orderID string) ([]OrderEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, status, note, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []OrderEvent
	for rows.Next() {
		var e OrderEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
