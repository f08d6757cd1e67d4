package favorites

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Service manages a customer's favorite shops.
type Service struct {
	Store *store.Store
}

// Toggle flips the favorite flag for a shop and reports the new state.
func (s *Service) Toggle(ctx context.Context, userID, shopID string) (bool, error) {
	if _, err := s.Store.GetShop(ctx, shopID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, common.NewAppError("NOT_FOUND", "shop not found", http.StatusNotFound, err)
		}
		return false, err
	}
	favorited, err := s.Store.IsFavoriteShop(ctx, userID, shopID)
	if err != nil {
		return false, err
	}
	if favorited {
		return false, s.Store.RemoveFavoriteShop(ctx, userID, shopID)
	}
	return true, s.Store.AddFavoriteShop(ctx, userID, shopID)
}

// List returns the user's favorite shops.
func (s *Service) List(ctx context.Context, userID string) ([]store.Shop, error) {
	return s.Store.ListFavoriteShops(ctx, userID)
}

// Check reports whether the user has favorited the shop.
func (s *Service) Check(ctx context.Context, userID, shopID string) (bool, error) {
	return s.Store.IsFavoriteShop(ctx, userID, shopID)
}
