package store

import (
	"encoding/json"
	"time"
)

// User is a registered account. Roles are any of customer, shipper, admin.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is a hashed refresh token row.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Device is a registered push notification target.
type Device struct {
	ID        string
	UserID    string
	Token     string
	Platform  string
	CreatedAt time.Time
}

// Shop is an order origin.
type Shop struct {
	ID        string
	OwnerID   string
	Name      string
	ShopType  string
	Address   string
	Phone     string
	Open      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Topping is an additive option on a menu item, stored as JSONB.
type Topping struct {
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Enabled bool   `json:"enabled"`
}

// Item is a menu item sold by a shop.
type Item struct {
	ID          string
	ShopID      string
	Name        string
	Description string
	Price       int64
	PromoPrice  *int64
	Toppings    []Topping
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Promo is a discount code definition.
type Promo struct {
	ID           string
	Code         string
	Kind         string
	Value        int64
	MaxDiscount  *int64
	UsageLimit   *int32
	PerUserLimit *int32
	DurationDays *int32
	ValidFrom    *time.Time
	ValidTo      *time.Time
	Enabled      bool
	UsedCount    int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PromoUsage records one redemption of a promo against an order.
type PromoUsage struct {
	ID        string
	PromoID   string
	UserID    *string
	OrderID   string
	Amount    int64
	CreatedAt time.Time
}

// Order is a customer order. Monetary fields are whole VND; the stored
// totals are the values computed at creation and kept for audit, while read
// paths re-derive display totals from active line items.
type Order struct {
	ID          string
	CustomerID  *string
	GuestID     *string
	ShipperID   *string
	Status      string
	ShipType    string
	Subtotal    int64
	BaseShipFee int64
	Surcharge   int64
	Discount    int64
	Total       int64
	PromoCode   *string
	Address     json.RawMessage
	Note        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem is one line of an order. Status is active or cancelled.
type OrderItem struct {
	ID        string
	OrderID   string
	ItemID    string
	ShopID    string
	Name      string
	Qty       int32
	UnitPrice int64
	Toppings  []Topping
	Status    string
	CreatedAt time.Time
}

// OrderEvent is one row of the append-only order event log.
type OrderEvent struct {
	ID        string
	OrderID   string
	Status    string
	Note      string
	CreatedAt time.Time
}

// Transaction is one signed, append-only ledger entry for a shipper.
type Transaction struct {
	ID          string
	ShipperID   string
	Amount      int64
	EntryType   string
	Description string
	OrderID     *string
	CreatedAt   time.Time
}

// DomainEvent is a persisted platform event.
type DomainEvent struct {
	ID          string
	Topic       string
	AggregateID string
	Payload     json.RawMessage
	OccurredAt  time.Time
}
