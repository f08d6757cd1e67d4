package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Shop is the public view of an order origin.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShopType  string    `json:"shop_type"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Open      bool      `json:"open"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is the public view of a menu item. Disabled toppings stay visible so
// clients can grey them out.
type Item struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shop_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	PromoPrice  *int64          `json:"promo_price,omitempty"`
	Toppings    []store.Topping `json:"toppings"`
	Available   bool            `json:"available"`
}

// Service serves shops and menus with a Redis read-through cache.
type Service struct {
	Store *store.Store
	Cache *Cache
	Log   zerolog.Logger
}

// ListShops returns shops, optionally filtered by type.
func (s *Service) ListShops(ctx context.Context, shopType string, limit, offset int32) ([]Shop, error) {
	key := ""
	if offset == 0 {
		key = shopListKey(shopType)
		var cached []Shop
		if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}
	rows, err := s.Store.ListShops(ctx, shopType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	shops := make([]Shop, 0, len(rows))
	for _, row := range rows {
		shops = append(shops, toShop(row))
	}
	if key != "" {
		if err := s.Cache.SetJSON(ctx, key, shops); err != nil {
			s.Log.Warn().Err(err).Msg("shop list cache write failed")
		}
	}
	return shops, nil
}

// GetShop returns one shop.
func (s *Service) GetShop(ctx context.Context, id string) (Shop, error) {
	row, err := s.Store.GetShop(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, common.NewAppError("NOT_FOUND", "shop not found", http.StatusNotFound, err)
	}
	if err != nil {
		return Shop{}, fmt.Errorf("get shop: %w", err)
	}
	return toShop(row), nil
}

// Menu returns a shop's items.
func (s *Service) Menu(ctx context.Context, shopID string) ([]Item, error) {
	key := menuKey(shopID)
	var cached []Item
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.Store.ListItemsByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, toItem(row))
	}
	if err := s.Cache.SetJSON(ctx, key, items); err != nil {
		s.Log.Warn().Err(err).Msg("menu cache write failed")
	}
	return items, nil
}

// CreateShopInput carries the fields of a new shop.
type CreateShopInput struct {
	Name     string `json:"name" validate:"required"`
	ShopType string `json:"shop_type"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// CreateShop registers a shop owned by ownerID.
func (s *Service) CreateShop(ctx context.Context, ownerID string, in CreateShopInput) (Shop, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Shop{}, common.NewAppError("VALIDATION_ERROR", "name is required", http.StatusBadRequest, nil)
	}
	shopType := in.ShopType
	if shopType == "" {
		shopType = "food"
	}
	row, err := s.Store.CreateShop(ctx, ownerID, name, shopType, in.Address, in.Phone)
	if err != nil {
		return Shop{}, fmt.Errorf("create shop: %w", err)
	}
	s.Cache.Invalidate(ctx, shopListKey(""), shopListKey(shopType))
	return toShop(row), nil
}

// UpdateShopInput carries a shop's mutable fields.
type UpdateShopInput struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Open    bool   `json:"open"`
}

// UpdateShop rewrites a shop's mutable fields after an ownership check.
func (s *Service) UpdateShop(ctx context.Context, shopID, callerID string, admin bool, in UpdateShopInput) (Shop, error) {
	existing, err := s.Store.GetShop(ctx, shopID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, common.NewAppError("NOT_FOUND", "shop not found", http.StatusNotFound, err)
	}
	if err != nil {
		return Shop{}, fmt.Errorf("get shop: %w", err)
	}
	if !admin && existing.OwnerID != callerID {
		return Shop{}, common.NewAppError("FORBIDDEN", "not the shop owner", http.StatusForbidden, nil)
	}
	row, err := s.Store.UpdateShop(ctx, shopID, strings.TrimSpace(in.Name), in.Address, in.Phone, in.Open)
	if err != nil {
		return Shop{}, fmt.Errorf("update shop: %w", err)
	}
	s.Cache.Invalidate(ctx, shopListKey(""), shopListKey(existing.ShopType))
	return toShop(row), nil
}

// ItemInput carries a menu item's fields.
type ItemInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       int64           `json:"price" validate:"gte=0"`
	PromoPrice  *int64          `json:"promo_price"`
	Toppings    []store.Topping `json:"toppings"`
	Available   bool            `json:"available"`
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return common.NewAppError("VALIDATION_ERROR", "name is required", http.StatusBadRequest, nil)
	}
	if in.Price < 0 {
		return common.NewAppError("VALIDATION_ERROR", "price must not be negative", http.StatusBadRequest, nil)
	}
	for _, tp := range in.Toppings {
		if tp.Price < 0 {
			return common.NewAppError("VALIDATION_ERROR", "topping price must not be negative", http.StatusBadRequest, nil)
		}
	}
	return nil
}

// CreateItem adds a menu item to a shop owned by callerID.
func (s *Service) CreateItem(ctx context.Context, shopID, callerID string, admin bool, in ItemInput) (Item, error) {
	if err := in.validate(); err != nil {
		return Item{}, err
	}
	if err := s.checkOwner(ctx, shopID, callerID, admin); err != nil {
		return Item{}, err
	}
	row, err := s.Store.CreateItem(ctx, shopID, strings.TrimSpace(in.Name), in.Description, in.Price, in.PromoPrice, in.Toppings)
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	s.Cache.Invalidate(ctx, menuKey(shopID))
	return toItem(row), nil
}

// UpdateItem rewrites a menu item.
func (s *Service) UpdateItem(ctx context.Context, itemID, callerID string, admin bool, in ItemInput) (Item, error) {
	if err := in.validate(); err != nil {
		return Item{}, err
	}
	existing, err := s.Store.GetItem(ctx, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, common.NewAppError("NOT_FOUND", "item not found", http.StatusNotFound, err)
	}
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	if err := s.checkOwner(ctx, existing.ShopID, callerID, admin); err != nil {
		return Item{}, err
	}
	row, err := s.Store.UpdateItem(ctx, itemID, strings.TrimSpace(in.Name), in.Description, in.Price, in.PromoPrice, in.Toppings, in.Available)
	if err != nil {
		return Item{}, fmt.Errorf("update item: %w", err)
	}
	s.Cache.Invalidate(ctx, menuKey(existing.ShopID))
	return toItem(row), nil
}

// DeleteItem removes a menu item.
func (s *Service) DeleteItem(ctx context.Context, itemID, callerID string, admin bool) error {
	existing, err := s.Store.GetItem(ctx, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewAppError("NOT_FOUND", "item not found", http.StatusNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if err := s.checkOwner(ctx, existing.ShopID, callerID, admin); err != nil {
		return err
	}
	if err := s.Store.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.Cache.Invalidate(ctx, menuKey(existing.ShopID))
	return nil
}

func (s *Service) checkOwner(ctx context.Context, shopID, callerID string, admin bool) error {
	if admin {
		return nil
	}
	shop, err := s.Store.GetShop(ctx, shopID)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewAppError("NOT_FOUND", "shop not found", http.StatusNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("get shop: %w", err)
	}
	if shop.OwnerID != callerID {
		return common.NewAppError("FORBIDDEN", "not the shop owner", http.StatusForbidden, nil)
	}
	return nil
}

func toShop(row store.Shop) Shop {
	return Shop{
		ID:        row.ID,
		Name:      row.Name,
		ShopType:  row.ShopType,
		Address:   row.Address,
		Phone:     row.Phone,
		Open:      row.Open,
		CreatedAt: row.CreatedAt,
	}
}

func toItem(row store.Item) Item {
	return Item{
		ID:          row.ID,
		ShopID:      row.ShopID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		PromoPrice:  row.PromoPrice,
		Toppings:    row.Toppings,
		Available:   row.Available,
	}
}
