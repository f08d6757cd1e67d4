package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/events"
	"github.com/ngocvh/backend-cho/internal/ledger"
	"github.com/ngocvh/backend-cho/internal/obs"
	"github.com/ngocvh/backend-cho/internal/pricing"
	"github.com/ngocvh/backend-cho/internal/promo"
	"github.com/ngocvh/backend-cho/internal/settings"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Service owns order lifecycle: creation with pricing, shipper acceptance,
// status transitions, per-line cancellation, and the ledger accrual on
// completion.
type Service struct {
	Store    *store.Store
	Settings *settings.Service
	Promos   *promo.Service
	Ledger   *ledger.Service
	Events   *events.Bus
	Validate *validator.Validate
	Log      zerolog.Logger
}

// LineInput selects one catalog item for an order. Toppings are referenced
// by name against the item's definition.
type LineInput struct {
	ItemID   string   `json:"item_id" validate:"required,uuid"`
	Qty      int32    `json:"qty" validate:"gte=1"`
	Toppings []string `json:"toppings"`
}

// CreateInput is the payload for placing an order.
type CreateInput struct {
	GuestID   string          `json:"guest_id"`
	ShipType  string          `json:"ship_type" validate:"omitempty,oneof=normal atDoor"`
	Lines     []LineInput     `json:"lines" validate:"required,min=1,dive"`
	PromoCode string          `json:"promo_code"`
	Address   json.RawMessage `json:"address"`
	Note      string          `json:"note"`
}

// View is the order representation returned to clients. Totals are
// re-derived from active lines on every read so a cancelled line is
// reflected immediately.
type View struct {
	ID          string             `json:"id"`
	CustomerID  *string            `json:"customer_id,omitempty"`
	GuestID     *string            `json:"guest_id,omitempty"`
	ShipperID   *string            `json:"shipper_id,omitempty"`
	Status      string             `json:"status"`
	ShipType    string             `json:"ship_type"`
	Subtotal    int64              `json:"subtotal"`
	OriginCount int                `json:"origin_count"`
	BaseShipFee int64              `json:"base_ship_fee"`
	Surcharge   int64              `json:"surcharge"`
	Discount    int64              `json:"discount"`
	Total       int64              `json:"total"`
	PromoCode   *string            `json:"promo_code,omitempty"`
	Address     json.RawMessage    `json:"address,omitempty"`
	Note        *string            `json:"note,omitempty"`
	Items       []store.OrderItem  `json:"items,omitempty"`
	Events      []store.OrderEvent `json:"events,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Create prices and persists a new order. Promo redemption happens inside
// the same transaction as the order insert, so quota cannot be consumed for
// an order that fails to commit.
func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (View, error) {
	if len(in.Lines) == 0 {
		return View{}, common.NewAppError("VALIDATION_ERROR", "order needs at least one line", http.StatusBadRequest, nil)
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return View{}, common.NewAppError("VALIDATION_ERROR", err.Error(), http.StatusBadRequest, err)
		}
	}
	if customerID == "" && in.GuestID == "" {
		return View{}, common.NewAppError("VALIDATION_ERROR", "customer or guest id is required", http.StatusBadRequest, nil)
	}

	cfg, err := s.Settings.Get(ctx)
	if err != nil {
		return View{}, err
	}

	lines, priced, err := s.priceLines(ctx, in.Lines, cfg)
	if err != nil {
		return View{}, err
	}

	origins := pricing.OriginCount(priced)
	quote := pricing.QuoteShipFee(in.ShipType, cfg.ShipFeeNormal, cfg.ShipFeeAtDoor, origins, cfg.PerExtraShopFee)
	summary := pricing.Compute(priced, quote.BaseFee, cfg.PerExtraShopFee, 0)

	var created store.Order
	err = s.Store.InTx(ctx, func(q *store.Store) error {
		params := store.CreateOrderParams{
			ShipType:    in.ShipType,
			Subtotal:    summary.Subtotal,
			BaseShipFee: quote.BaseFee,
			Surcharge:   summary.Surcharge,
			Discount:    0,
			Total:       summary.Total,
			Address:     in.Address,
		}
		if customerID != "" {
			params.CustomerID = &customerID
		}
		if in.GuestID != "" {
			params.GuestID = &in.GuestID
		}
		if in.Note != "" {
			params.Note = &in.Note
		}
		if in.PromoCode != "" {
			params.PromoCode = &in.PromoCode
		}

		row, err := q.CreateOrder(ctx, params)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range lines {
			if _, err := q.CreateOrderItem(ctx, row.ID, line.itemID, line.shopID, line.name, line.qty, line.unitPrice, line.toppings); err != nil {
				return fmt.Errorf("create order line: %w", err)
			}
		}

		if in.PromoCode != "" {
			var uid *string
			if customerID != "" {
				uid = &customerID
			}
			discount, err := s.Promos.Redeem(ctx, q, in.PromoCode, uid, row.ID, summary.Subtotal, quote.Total)
			if err != nil {
				s.countPromo("rejected")
				return promo.AsAppError(err)
			}
			s.countPromo("applied")
			summary = pricing.Compute(priced, quote.BaseFee, cfg.PerExtraShopFee, discount)
			if err := q.UpdateOrderTotals(ctx, row.ID, summary.Subtotal, summary.Surcharge, summary.Discount, summary.Total); err != nil {
				return fmt.Errorf("update order totals: %w", err)
			}
			row.Discount = summary.Discount
			row.Total = summary.Total
		}

		if _, err := q.CreateOrderEvent(ctx, row.ID, StatusPending.String(), "order placed"); err != nil {
			return fmt.Errorf("append order event: %w", err)
		}
		created = row
		return nil
	})
	if err != nil {
		s.countOrder("create", "error")
		return View{}, err
	}
	s.countOrder("create", "ok")

	s.emit(ctx, events.TopicOrderCreated, created.ID, map[string]any{
		"order_id": created.ID,
		"total":    created.Total,
	})
	return s.load(ctx, created.ID)
}

// Get returns an order with lines and event log. Access is limited to the
// owner, the assigned shipper, and admins.
func (s *Service) Get(ctx context.Context, orderID, callerID string, admin bool) (View, error) {
	view, err := s.load(ctx, orderID)
	if err != nil {
		return View{}, err
	}
	if !admin && !isOwner(view, callerID) && !isAssigned(view, callerID) {
		return View{}, common.NewAppError("FORBIDDEN", "not your order", http.StatusForbidden, nil)
	}
	return view, nil
}

// Accept assigns the calling shipper to a pending order. The conditional
// update in the store guarantees exactly one winner under concurrency; the
// assignment and its event-log row commit together.
func (s *Service) Accept(ctx context.Context, orderID, shipperID string) (View, error) {
	err := s.Store.InTx(ctx, func(q *store.Store) error {
		won, err := q.AcceptOrder(ctx, orderID, shipperID)
		if err != nil {
			return fmt.Errorf("accept order: %w", err)
		}
		if !won {
			if obs.OrderAcceptConflicts != nil {
				obs.OrderAcceptConflicts.Inc()
			}
			return common.NewAppError("ORDER_TAKEN", "order is no longer available", http.StatusConflict, nil)
		}
		if _, err := q.CreateOrderEvent(ctx, orderID, StatusAssigned.String(), "accepted by shipper"); err != nil {
			return fmt.Errorf("append accept event: %w", err)
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.countOrder("accept", "ok")
	s.emit(ctx, events.TopicOrderAssigned, orderID, map[string]any{
		"order_id":   orderID,
		"shipper_id": shipperID,
	})
	return s.load(ctx, orderID)
}

// UpdateStatus moves an order along the lifecycle. Transitions outside the
// allowed table are rejected; completion additionally accrues the platform
// share into the shipper ledger in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, orderID, callerID string, admin bool, rawTarget, note string) (View, error) {
	target, err := ParseStatus(rawTarget)
	if err != nil {
		return View{}, common.NewAppError("VALIDATION_ERROR", err.Error(), http.StatusBadRequest, err)
	}

	cfg, err := s.Settings.Get(ctx)
	if err != nil {
		return View{}, err
	}

	var accrued *store.Transaction
	var accruedShipper string
	err = s.Store.InTx(ctx, func(q *store.Store) error {
		row, err := q.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if !admin && !s.mayTransition(row, callerID, target) {
			return common.NewAppError("FORBIDDEN", "not allowed to change this order", http.StatusForbidden, nil)
		}
		current, err := ParseStatus(row.Status)
		if err != nil {
			return fmt.Errorf("stored status: %w", err)
		}
		if !current.CanTransition(target) {
			return common.NewAppError("INVALID_TRANSITION",
				fmt.Sprintf("cannot move order from %s to %s", current, target), http.StatusConflict, nil)
		}

		applied, err := q.UpdateOrderStatus(ctx, orderID, current.String(), target.String())
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !applied {
			return common.NewAppError("CONFLICT", "order changed concurrently", http.StatusConflict, nil)
		}
		if _, err := q.CreateOrderEvent(ctx, orderID, target.String(), note); err != nil {
			return fmt.Errorf("append order event: %w", err)
		}

		if target == StatusCompleted && row.ShipperID != nil {
			shipTotal := row.BaseShipFee + row.Surcharge
			entry, err := s.Ledger.Accrue(ctx, q, *row.ShipperID, orderID, shipTotal, int(cfg.PlatformSharePct), row.Discount)
			if err != nil {
				return err
			}
			if obs.LedgerEntriesTotal != nil {
				obs.LedgerEntriesTotal.WithLabelValues(entry.EntryType).Inc()
			}
			accrued = &entry
			accruedShipper = *row.ShipperID
		}
		return nil
	})
	if err != nil {
		s.countOrder("status", "error")
		return View{}, err
	}
	s.countOrder("status", "ok")

	switch target {
	case StatusInTransit:
		s.emit(ctx, events.TopicOrderInTransit, orderID, map[string]any{"order_id": orderID})
	case StatusCompleted:
		s.emit(ctx, events.TopicOrderCompleted, orderID, map[string]any{"order_id": orderID})
		if accrued != nil {
			s.emit(ctx, events.TopicLedgerAccrued, accruedShipper, map[string]any{
				"order_id": orderID,
				"entry_id": accrued.ID,
				"amount":   accrued.Amount,
			})
		}
	case StatusCancelled:
		s.emit(ctx, events.TopicOrderCancelled, orderID, map[string]any{"order_id": orderID})
	}
	return s.load(ctx, orderID)
}

// CancelLine marks one line cancelled and reprices the order from the
// remaining active lines. Cancelling the last active line cancels the whole
// order.
func (s *Service) CancelLine(ctx context.Context, orderID, lineID, callerID string, admin bool) (View, error) {
	cfg, err := s.Settings.Get(ctx)
	if err != nil {
		return View{}, err
	}

	var orderCancelled bool
	err = s.Store.InTx(ctx, func(q *store.Store) error {
		row, err := q.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		current, err := ParseStatus(row.Status)
		if err != nil {
			return fmt.Errorf("stored status: %w", err)
		}
		if current.Terminal() {
			return common.NewAppError("INVALID_TRANSITION", "order is already closed", http.StatusConflict, nil)
		}
		assigned := row.ShipperID != nil && *row.ShipperID == callerID
		owner := (row.CustomerID != nil && *row.CustomerID == callerID)
		if !admin && !assigned && !owner {
			return common.NewAppError("FORBIDDEN", "not allowed to change this order", http.StatusForbidden, nil)
		}

		cancelled, err := q.CancelOrderItem(ctx, orderID, lineID)
		if err != nil {
			return fmt.Errorf("cancel line: %w", err)
		}
		if !cancelled {
			return common.NewAppError("NOT_FOUND", "active line not found", http.StatusNotFound, nil)
		}

		remaining, err := q.CountActiveOrderItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("count active lines: %w", err)
		}
		if remaining == 0 {
			applied, err := q.UpdateOrderStatus(ctx, orderID, current.String(), StatusCancelled.String())
			if err != nil {
				return fmt.Errorf("cancel order: %w", err)
			}
			if !applied {
				return common.NewAppError("CONFLICT", "order changed concurrently", http.StatusConflict, nil)
			}
			if _, err := q.CreateOrderEvent(ctx, orderID, StatusCancelled.String(), "last line cancelled"); err != nil {
				return fmt.Errorf("append order event: %w", err)
			}
			orderCancelled = true
			return nil
		}

		items, err := q.ListOrderItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list lines: %w", err)
		}
		summary := pricing.Compute(toPricingLines(items), row.BaseShipFee, cfg.PerExtraShopFee, row.Discount)
		if err := q.UpdateOrderTotals(ctx, orderID, summary.Subtotal, summary.Surcharge, summary.Discount, summary.Total); err != nil {
			return fmt.Errorf("update order totals: %w", err)
		}
		if _, err := q.CreateOrderEvent(ctx, orderID, current.String(), "line cancelled"); err != nil {
			return fmt.Errorf("append order event: %w", err)
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	if orderCancelled {
		s.emit(ctx, events.TopicOrderCancelled, orderID, map[string]any{"order_id": orderID})
	}
	return s.load(ctx, orderID)
}

// ListMine returns the caller's orders.
func (s *Service) ListMine(ctx context.Context, customerID string, limit, offset int32) ([]View, error) {
	rows, err := s.Store.ListOrdersByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.summarize(rows), nil
}

// ListPending returns the unassigned order feed for shippers.
func (s *Service) ListPending(ctx context.Context, limit, offset int32) ([]View, error) {
	rows, err := s.Store.ListPendingOrders(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return s.summarize(rows), nil
}

// ListForShipper returns orders assigned to the given shipper.
func (s *Service) ListForShipper(ctx context.Context, shipperID string, limit, offset int32) ([]View, error) {
	rows, err := s.Store.ListOrdersByShipper(ctx, shipperID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shipper orders: %w", err)
	}
	return s.summarize(rows), nil
}

// ListAll returns orders for the admin view, optionally filtered by status.
func (s *Service) ListAll(ctx context.Context, status string, limit, offset int32) ([]View, error) {
	if status != "" {
		parsed, err := ParseStatus(status)
		if err != nil {
			return nil, common.NewAppError("VALIDATION_ERROR", err.Error(), http.StatusBadRequest, err)
		}
		status = parsed.String()
	}
	rows, err := s.Store.ListOrders(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.summarize(rows), nil
}

type pricedLine struct {
	itemID    string
	shopID    string
	name      string
	qty       int32
	unitPrice int64
	toppings  []store.Topping
}

// priceLines resolves catalog items, picks unit prices (promotional price
// wins when set), and snapshots the selected toppings onto the order.
func (s *Service) priceLines(ctx context.Context, inputs []LineInput, cfg settings.Settings) ([]pricedLine, []pricing.LineItem, error) {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if in.Qty <= 0 {
			return nil, nil, common.NewAppError("VALIDATION_ERROR", "quantity must be positive", http.StatusBadRequest, nil)
		}
		ids = append(ids, in.ItemID)
	}
	items, err := s.Store.ListItemsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	byID := make(map[string]store.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	lines := make([]pricedLine, 0, len(inputs))
	pls := make([]pricing.LineItem, 0, len(inputs))
	shops := make(map[string]struct{})
	for _, in := range inputs {
		item, ok := byID[in.ItemID]
		if !ok {
			return nil, nil, common.NewAppError("NOT_FOUND", "item not found: "+in.ItemID, http.StatusNotFound, nil)
		}
		if !item.Available {
			return nil, nil, common.NewAppError("ITEM_UNAVAILABLE", "item is not available: "+item.Name, http.StatusUnprocessableEntity, nil)
		}
		unit := item.Price
		if item.PromoPrice != nil && *item.PromoPrice > 0 && *item.PromoPrice < item.Price {
			unit = *item.PromoPrice
		}
		selected, err := selectToppings(item, in.Toppings)
		if err != nil {
			return nil, nil, err
		}
		shops[item.ShopID] = struct{}{}

		lines = append(lines, pricedLine{
			itemID:    item.ID,
			shopID:    item.ShopID,
			name:      item.Name,
			qty:       in.Qty,
			unitPrice: unit,
			toppings:  selected,
		})
		pls = append(pls, pricing.LineItem{
			ShopID:    item.ShopID,
			Qty:       int(in.Qty),
			UnitPrice: unit,
			Toppings:  toPricingToppings(selected),
		})
	}
	if cfg.MaxShopsPerOrder > 0 && int32(len(shops)) > cfg.MaxShopsPerOrder {
		return nil, nil, common.NewAppError("TOO_MANY_SHOPS",
			fmt.Sprintf("an order may include at most %d shops", cfg.MaxShopsPerOrder), http.StatusUnprocessableEntity, nil)
	}
	if len(cfg.MaxShopsPerType) > 0 {
		shopIDs := make([]string, 0, len(shops))
		for id := range shops {
			shopIDs = append(shopIDs, id)
		}
		types, err := s.Store.ShopTypesByID(ctx, shopIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("load shop types: %w", err)
		}
		if err := checkTypeCaps(types, cfg.MaxShopsPerType); err != nil {
			return nil, nil, err
		}
	}
	return lines, pls, nil
}

// checkTypeCaps rejects orders drawing from more distinct shops of one type
// than the per-type cap allows. Types without a cap pass through.
func checkTypeCaps(shopTypes map[string]string, caps map[string]int32) error {
	counts := make(map[string]int32, len(caps))
	for _, shopType := range shopTypes {
		counts[shopType]++
	}
	for shopType, count := range counts {
		if limit, ok := caps[shopType]; ok && limit > 0 && count > limit {
			return common.NewAppError("TOO_MANY_SHOPS",
				fmt.Sprintf("an order may include at most %d %s shops", limit, shopType), http.StatusUnprocessableEntity, nil)
		}
	}
	return nil
}

// selectToppings snapshots the requested toppings from the item definition.
// Disabled toppings stay on the snapshot but are priced at zero.
func selectToppings(item store.Item, names []string) ([]store.Topping, error) {
	if len(names) == 0 {
		return nil, nil
	}
	byName := make(map[string]store.Topping, len(item.Toppings))
	for _, tp := range item.Toppings {
		byName[tp.Name] = tp
	}
	out := make([]store.Topping, 0, len(names))
	for _, name := range names {
		tp, ok := byName[name]
		if !ok {
			return nil, common.NewAppError("VALIDATION_ERROR",
				fmt.Sprintf("item %s has no topping %q", item.Name, name), http.StatusBadRequest, nil)
		}
		out = append(out, tp)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, orderID string) (View, error) {
	row, err := s.Store.GetOrder(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return View{}, common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, err)
	}
	if err != nil {
		return View{}, fmt.Errorf("load order: %w", err)
	}
	items, err := s.Store.ListOrderItems(ctx, orderID)
	if err != nil {
		return View{}, fmt.Errorf("load order lines: %w", err)
	}
	log, err := s.Store.ListOrderEvents(ctx, orderID)
	if err != nil {
		return View{}, fmt.Errorf("load order events: %w", err)
	}

	cfg, err := s.Settings.Get(ctx)
	if err != nil {
		return View{}, err
	}
	summary := pricing.Compute(toPricingLines(items), row.BaseShipFee, cfg.PerExtraShopFee, row.Discount)

	view := toView(row)
	view.Items = items
	view.Events = log
	view.Subtotal = summary.Subtotal
	view.OriginCount = summary.OriginCount
	view.Surcharge = summary.Surcharge
	view.Total = summary.Total
	return view, nil
}

func (s *Service) summarize(rows []store.Order) []View {
	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return views
}

func (s *Service) mayTransition(row store.Order, callerID string, target Status) bool {
	assigned := row.ShipperID != nil && *row.ShipperID == callerID
	owner := row.CustomerID != nil && *row.CustomerID == callerID
	switch target {
	case StatusCancelled:
		return owner || assigned
	case StatusInTransit, StatusCompleted:
		return assigned
	default:
		return false
	}
}

func (s *Service) emit(ctx context.Context, topic, orderID string, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, orderID, payload); err != nil {
		s.Log.Warn().Err(err).Str("topic", topic).Str("order_id", orderID).Msg("event emit incomplete")
	}
}

func (s *Service) countOrder(operation, result string) {
	if obs.OrdersTotal != nil {
		obs.OrdersTotal.WithLabelValues(operation, result).Inc()
	}
}

func (s *Service) countPromo(result string) {
	if obs.PromoResolutionsTotal != nil {
		obs.PromoResolutionsTotal.WithLabelValues(result).Inc()
	}
}

func isOwner(v View, callerID string) bool {
	return v.CustomerID != nil && *v.CustomerID == callerID
}

func isAssigned(v View, callerID string) bool {
	return v.ShipperID != nil && *v.ShipperID == callerID
}

func toView(row store.Order) View {
	return View{
		ID:          row.ID,
		CustomerID:  row.CustomerID,
		GuestID:     row.GuestID,
		ShipperID:   row.ShipperID,
		Status:      row.Status,
		ShipType:    row.ShipType,
		Subtotal:    row.Subtotal,
		BaseShipFee: row.BaseShipFee,
		Surcharge:   row.Surcharge,
		Discount:    row.Discount,
		Total:       row.Total,
		PromoCode:   row.PromoCode,
		Address:     row.Address,
		Note:        row.Note,
		CreatedAt:   row.CreatedAt,
	}
}

func toPricingLines(items []store.OrderItem) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.LineItem{
			ShopID:    it.ShopID,
			Qty:       int(it.Qty),
			UnitPrice: it.UnitPrice,
			Toppings:  toPricingToppings(it.Toppings),
			Cancelled: it.Status != "active",
		})
	}
	return out
}

func toPricingToppings(tps []store.Topping) []pricing.Topping {
	out := make([]pricing.Topping, 0, len(tps))
	for _, tp := range tps {
		out = append(out, pricing.Topping{Name: tp.Name, Price: tp.Price, Enabled: tp.Enabled})
	}
	return out
}
