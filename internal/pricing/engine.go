package pricing

// Money represents a monetary value in whole VND.
type Money = int64

// Topping is an additive option selected on a line item.
type Topping struct {
	Name    string
	Price   Money
	Enabled bool
}

// LineItem describes a single ordered item used for total calculation.
type LineItem struct {
	ShopID    string
	Qty       int
	UnitPrice Money
	Toppings  []Topping
	Cancelled bool
}

// Summary aggregates the computed order components.
type Summary struct {
	Subtotal    Money
	OriginCount int
	BaseShipFee Money
	Surcharge   Money
	Discount    Money
	Total       Money
}

// ShipQuote breaks a shipping fee into its base and multi-origin parts.
type ShipQuote struct {
	BaseFee   Money
	Surcharge Money
	Total     Money
}

// ShipTypeAtDoor selects the at-door delivery tier; anything else uses the normal tier.
const ShipTypeAtDoor = "atDoor"

// Contribution returns the amount a single line item adds to the subtotal.
// Cancelled items and non-positive quantities contribute nothing.
func Contribution(it LineItem) Money {
	if it.Cancelled || it.Qty <= 0 {
		return 0
	}
	unit := it.UnitPrice
	for _, t := range it.Toppings {
		if t.Enabled {
			unit += t.Price
		}
	}
	return unit * Money(it.Qty)
}

// OriginCount reports the number of distinct shops among active line items.
func OriginCount(items []LineItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Cancelled || it.Qty <= 0 {
			continue
		}
		seen[it.ShopID] = struct{}{}
	}
	return len(seen)
}

// Surcharge computes the additive fee for each origin beyond the first.
func Surcharge(originCount int, perExtraOrigin Money) Money {
	if originCount <= 1 {
		return 0
	}
	return Money(originCount-1) * perExtraOrigin
}

// Compute calculates order totals from active line items and shipping inputs.
// The grand total never goes below zero even when the discount exceeds the
// payable amount.
func Compute(items []LineItem, baseShipFee, perExtraOrigin, discount Money) Summary {
	var subtotal Money
	for _, it := range items {
		subtotal += Contribution(it)
	}
	origins := OriginCount(items)
	surcharge := Surcharge(origins, perExtraOrigin)
	if discount < 0 {
		discount = 0
	}
	total := subtotal + baseShipFee + surcharge - discount
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal:    subtotal,
		OriginCount: origins,
		BaseShipFee: baseShipFee,
		Surcharge:   surcharge,
		Discount:    discount,
		Total:       total,
	}
}

// QuoteShipFee resolves the shipping fee for an order before discounts.
func QuoteShipFee(shipType string, normalFee, atDoorFee Money, originCount int, perExtraOrigin Money) ShipQuote {
	base := normalFee
	if shipType == ShipTypeAtDoor {
		base = atDoorFee
	}
	surcharge := Surcharge(originCount, perExtraOrigin)
	return ShipQuote{
		BaseFee:   base,
		Surcharge: surcharge,
		Total:     base + surcharge,
	}
}
