package store

import (
	"context"
	"encoding/json"
	"fmt"
)

const shopColumns = `id, owner_id, name, shop_type, address, phone, open, created_at, updated_at`

func scanShop(row interface{ Scan(...any) error }) (Shop, error) {
	var s Shop
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.ShopType, &s.Address, &s.Phone, &s.Open, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateShop inserts a new shop owned by ownerID.
func (s *Store) CreateShop(ctx context.Context, ownerID, name, shopType, address, phone string) (Shop, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO shops (owner_id, name, shop_type, address, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+shopColumns,
		ownerID, name, shopType, address, phone)
	return scanShop(row)
}

// GetShop fetches a shop by id.
func (s *Store) GetShop(ctx context.Context, id string) (Shop, error) {
	row := s.db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id)
	return scanShop(row)
}

// ListShops returns shops, optionally filtered by type, newest first.
func (s *Store) ListShops(ctx context.Context, shopType string, limit, offset int32) ([]Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops`
	args := []any{}
	if shopType != "" {
		query += ` WHERE shop_type = $1`
		args = append(args, shopType)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var shops []Shop
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

// ShopTypesByID returns shop_type keyed by shop id for the given ids.
func (s *Store) ShopTypesByID(ctx context.Context, ids []string) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id, shop_type FROM shops WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make(map[string]string, len(ids))
	for rows.Next() {
		var id, shopType string
		if err := rows.Scan(&id, &shopType); err != nil {
			return nil, err
		}
		types[id] = shopType
	}
	return types, rows.Err()
}

// UpdateShop updates a shop's mutable fields.
func (s *Store) UpdateShop(ctx context.Context, id, name, address, phone string, open bool) (Shop, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE shops SET name = $2, address = $3, phone = $4, open = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+shopColumns,
		id, name, address, phone, open)
	return scanShop(row)
}

const itemColumns = `id, shop_id, name, description, price, promo_price, toppings, available, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (Item, error) {
	var it Item
	var toppings []byte
	err := row.Scan(&it.ID, &it.ShopID, &it.Name, &it.Description, &it.Price, &it.PromoPrice, &toppings, &it.Available, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	if err := json.Unmarshal(toppings, &it.Toppings); err != nil {
		return Item{}, fmt.Errorf("decode toppings: %w", err)
	}
	return it, nil
}

// CreateItem inserts a menu item under a shop.
func (s *Store) CreateItem(ctx context.Context, shopID, name, description string, price int64, promoPrice *int64, toppings []Topping) (Item, error) {
	encoded, err := json.Marshal(toppings)
	if err != nil {
		return Item{}, fmt.Errorf("encode toppings: %w", err)
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO items (shop_id, name, description, price, promo_price, toppings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		shopID, name, description, price, promoPrice, encoded)
	return scanItem(row)
}

// GetItem fetches a menu item by id.
func (s *Store) GetItem(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return scanItem(row)
}

// ListItemsByShop returns a shop's menu.
func (s *Store) ListItemsByShop(ctx context.Context, shopID string) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE shop_id = $1
		ORDER BY created_at`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListItemsByIDs fetches the given menu items in one round trip.
func (s *Store) ListItemsByIDs(ctx context.Context, ids []string) ([]Item, error) {
	rows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateItem updates a menu item's mutable fields.
func (s *Store) UpdateItem(ctx context.Context, id, name, description string, price int64, promoPrice *int64, toppings []Topping, available bool) (Item, error) {
	encoded, err := json.Marshal(toppings)
	if err != nil {
		return Item{}, fmt.Errorf("encode toppings: %w", err)
	}
	row := s.db.QueryRow(ctx, `
		UPDATE items SET name = $2, description = $3, price = $4, promo_price = $5,
			toppings = $6, available = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, name, description, price, promoPrice, encoded, available)
	return scanItem(row)
}

// DeleteItem removes a menu item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}
