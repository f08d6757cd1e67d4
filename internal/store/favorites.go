package store

import "context"

// AddFavoriteShop marks a shop as a user's favorite. Adding twice is a no-op.
func (s *Store) AddFavoriteShop(ctx context.Context, userID, shopID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO favorite_shops (user_id, shop_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, shopID)
	return err
}

// RemoveFavoriteShop unmarks a favorite shop.
func (s *Store) RemoveFavoriteShop(ctx context.Context, userID, shopID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM favorite_shops WHERE user_id = $1 AND shop_id = $2`, userID, shopID)
	return err
}

// IsFavoriteShop reports whether the user has favorited the shop.
func (s *Store) IsFavoriteShop(ctx context.Context, userID, shopID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM favorite_shops WHERE user_id = $1 AND shop_id = $2
		)`, userID, shopID).Scan(&exists)
	return exists, err
}

// ListFavoriteShops returns the user's favorite shops, most recent first.
func (s *Store) ListFavoriteShops(ctx context.Context, userID string) ([]Shop, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.owner_id, s.name, s.shop_type, s.address, s.phone, s.open, s.created_at, s.updated_at
		FROM shops s
		JOIN favorite_shops f ON f.shop_id = s.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
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
