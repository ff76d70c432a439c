package totals

import "testing"

func TestLineRounding(t *testing.T) {
	if got := Line(3, 33.335); got != 100.01 {
		t.Fatalf("expected 100.01 got %v", got)
	}
	if got := Line(0, 99.99); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
	// Stable under recomputation with the same inputs.
	if Line(7, 14.285) != Line(7, 14.285) {
		t.Fatal("line total not stable")
	}
}

func TestSubtotalUsesStoredLineTotals(t *testing.T) {
	items := []Item{
		{Quantity: 2, UnitPrice: 10, LineTotal: 20},
		{Quantity: 1, UnitPrice: 5.555, LineTotal: 5.56},
	}
	if got := Subtotal(items); got != 25.56 {
		t.Fatalf("expected 25.56 got %v", got)
	}

	// Changing the raw quantity without refreshing LineTotal must not move
	// the subtotal.
	items[0].Quantity = 99
	if got := Subtotal(items); got != 25.56 {
		t.Fatalf("subtotal recomputed from raw fields, got %v", got)
	}
}

func TestDiscountClamping(t *testing.T) {
	if got := DiscountAmount(1000, Discount{Kind: DiscountPercentage, Value: 10}); got != 100 {
		t.Fatalf("expected 100 got %v", got)
	}
	if got := DiscountAmount(50, Discount{Kind: DiscountFixed, Value: 100}); got != 50 {
		t.Fatalf("expected clamp to 50 got %v", got)
	}
	if got := DiscountAmount(50, Discount{Kind: DiscountPercentage, Value: 150}); got != 50 {
		t.Fatalf("expected clamp to 50 got %v", got)
	}
	if got := DiscountAmount(1000, Discount{Kind: DiscountFixed, Value: 0}); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
	if got := DiscountAmount(1000, Discount{Kind: DiscountFixed, Value: -5}); got != 0 {
		t.Fatalf("expected 0 for negative value got %v", got)
	}
}

func TestTaxOnPostDiscountAmount(t *testing.T) {
	items := []Item{{Quantity: 1, UnitPrice: 1000, LineTotal: 1000}}
	res := Compute(items, Discount{Kind: DiscountPercentage, Value: 10}, 18)
	if res.Subtotal != 1000 {
		t.Fatalf("subtotal %v", res.Subtotal)
	}
	if res.DiscountAmount != 100 {
		t.Fatalf("discount %v", res.DiscountAmount)
	}
	if res.TaxAmount != 162 {
		t.Fatalf("tax must apply after discount, got %v", res.TaxAmount)
	}
	if res.GrandTotal != 1062 {
		t.Fatalf("grand total %v", res.GrandTotal)
	}
}

func TestComputeEmptyItems(t *testing.T) {
	res := Compute(nil, Discount{Kind: DiscountPercentage, Value: 10}, 18)
	if res.Subtotal != 0 || res.DiscountAmount != 0 || res.TaxAmount != 0 || res.GrandTotal != 0 {
		t.Fatalf("expected all zero, got %+v", res)
	}
}

func TestComputeFixedDiscountExceedsSubtotal(t *testing.T) {
	items := []Item{{Quantity: 1, UnitPrice: 50, LineTotal: 50}}
	res := Compute(items, Discount{Kind: DiscountFixed, Value: 100}, 18)
	if res.DiscountAmount != 50 {
		t.Fatalf("expected discount clamped to 50 got %v", res.DiscountAmount)
	}
	if res.TaxAmount != 0 {
		t.Fatalf("expected zero tax on zero base got %v", res.TaxAmount)
	}
	if res.GrandTotal != 0 {
		t.Fatalf("expected zero grand total got %v", res.GrandTotal)
	}
	if res.GrandTotal < 0 {
		t.Fatal("grand total must never be negative")
	}
}

func TestStagedRoundingOrder(t *testing.T) {
	// Each stage rounds independently; a single final rounding would differ
	// for inputs like these.
	items := []Item{
		{Quantity: 3, UnitPrice: 0.335, LineTotal: Line(3, 0.335)},
		{Quantity: 1, UnitPrice: 0.125, LineTotal: Line(1, 0.125)},
	}
	res := Compute(items, Discount{Kind: DiscountPercentage, Value: 3.3}, 7.7)
	if res.Subtotal != 1.14 {
		t.Fatalf("subtotal %v", res.Subtotal)
	}
	if res.DiscountAmount != 0.04 {
		t.Fatalf("discount %v", res.DiscountAmount)
	}
	if res.TaxAmount != 0.08 {
		t.Fatalf("tax %v", res.TaxAmount)
	}
	if res.GrandTotal != 1.18 {
		t.Fatalf("grand total %v", res.GrandTotal)
	}
}
