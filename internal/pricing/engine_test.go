package pricing

import "testing"

func TestComputeMultiOriginOrder(t *testing.T) {
	items := []LineItem{
		{ShopID: "shop-a", Qty: 2, UnitPrice: 20_000, Toppings: []Topping{{Name: "extra", Price: 5_000, Enabled: true}}},
		{ShopID: "shop-b", Qty: 1, UnitPrice: 35_000},
	}
	got := Compute(items, 11_000, 5_000, 0)
	if got.Subtotal != 85_000 {
		t.Fatalf("expected subtotal 85000, got %d", got.Subtotal)
	}
	if got.OriginCount != 2 {
		t.Fatalf("expected 2 origins, got %d", got.OriginCount)
	}
	if got.Surcharge != 5_000 {
		t.Fatalf("expected surcharge 5000, got %d", got.Surcharge)
	}
	if got.Total != 101_000 {
		t.Fatalf("expected total 101000, got %d", got.Total)
	}
}

func TestComputeIgnoresDisabledToppings(t *testing.T) {
	items := []LineItem{
		{ShopID: "shop-a", Qty: 1, UnitPrice: 10_000, Toppings: []Topping{
			{Name: "cheese", Price: 4_000, Enabled: true},
			{Name: "egg", Price: 6_000, Enabled: false},
		}},
	}
	got := Compute(items, 0, 0, 0)
	if got.Subtotal != 14_000 {
		t.Fatalf("expected subtotal 14000, got %d", got.Subtotal)
	}
}

func TestCancelledItemRemovesOnlyItsContribution(t *testing.T) {
	active := []LineItem{
		{ShopID: "a", Qty: 3, UnitPrice: 7_000},
		{ShopID: "a", Qty: 1, UnitPrice: 12_000},
	}
	before := Compute(active, 0, 0, 0)
	active[1].Cancelled = true
	after := Compute(active, 0, 0, 0)
	if before.Subtotal-after.Subtotal != 12_000 {
		t.Fatalf("expected subtotal to drop by 12000, dropped %d", before.Subtotal-after.Subtotal)
	}
}

func TestSurchargeBoundaries(t *testing.T) {
	cases := []struct {
		origins int
		want    Money
	}{
		{0, 0},
		{1, 0},
		{2, 5_000},
		{4, 15_000},
	}
	for _, tc := range cases {
		if got := Surcharge(tc.origins, 5_000); got != tc.want {
			t.Fatalf("origins=%d: expected %d, got %d", tc.origins, tc.want, got)
		}
	}
}

func TestComputeEmptyOrder(t *testing.T) {
	got := Compute(nil, 11_000, 5_000, 0)
	if got.OriginCount != 0 || got.Surcharge != 0 {
		t.Fatalf("empty order must have no origins or surcharge, got %+v", got)
	}
	if got.Total != 11_000 {
		t.Fatalf("expected total 11000, got %d", got.Total)
	}
}

func TestComputeClampsNegativeTotal(t *testing.T) {
	items := []LineItem{{ShopID: "a", Qty: 1, UnitPrice: 5_000}}
	got := Compute(items, 0, 0, 50_000)
	if got.Total != 0 {
		t.Fatalf("expected clamped total 0, got %d", got.Total)
	}
}

func TestQuoteShipFee(t *testing.T) {
	q := QuoteShipFee(ShipTypeAtDoor, 11_000, 16_000, 3, 5_000)
	if q.BaseFee != 16_000 {
		t.Fatalf("expected at-door base 16000, got %d", q.BaseFee)
	}
	if q.Surcharge != 10_000 {
		t.Fatalf("expected surcharge 10000, got %d", q.Surcharge)
	}
	if q.Total != 26_000 {
		t.Fatalf("expected total 26000, got %d", q.Total)
	}

	normal := QuoteShipFee("normal", 11_000, 16_000, 0, 5_000)
	if normal.BaseFee != 11_000 || normal.Surcharge != 0 {
		t.Fatalf("unexpected normal quote %+v", normal)
	}
}
