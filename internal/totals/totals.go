// Package totals implements the monetary calculation pipeline shared by
// quotations and invoices. All amounts are rounded to two decimals at each
// stage, half away from zero, so the stored figures match what the documents
// display.
package totals

import "math"

// DiscountKind selects how a discount value is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Discount describes a document-level discount.
type Discount struct {
	Kind  DiscountKind
	Value float64
}

// Item carries the numeric fields of a line item. LineTotal is the stored
// per-line amount; Subtotal sums stored totals rather than recomputing from
// quantity and price.
type Item struct {
	Quantity  float64
	UnitPrice float64
	LineTotal float64
}

// Result holds every derived amount for a document.
type Result struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	GrandTotal     float64 `json:"grandTotal"`
}

// Round2 rounds half away from zero at the second decimal.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Line returns the rounded total for a single line.
func Line(quantity, unitPrice float64) float64 {
	return Round2(quantity * unitPrice)
}

// Subtotal sums the stored line totals. Per-line rounding error accumulates
// here on purpose; callers must keep LineTotal current via Line.
func Subtotal(items []Item) float64 {
	var sum float64
	for _, item := range items {
		sum += item.LineTotal
	}
	return Round2(sum)
}

// DiscountAmount computes the discount against a subtotal, clamped so the
// discount never exceeds it.
func DiscountAmount(subtotal float64, d Discount) float64 {
	if d.Value <= 0 {
		return 0
	}
	if d.Kind == DiscountPercentage {
		return Round2(math.Min(subtotal*(d.Value/100), subtotal))
	}
	return Round2(math.Min(d.Value, subtotal))
}

// TaxAmount computes tax on an already-discounted amount.
func TaxAmount(amount, taxPercent float64) float64 {
	if taxPercent <= 0 {
		return 0
	}
	return Round2(amount * (taxPercent / 100))
}

// Compute runs the full pipeline: subtotal, then discount, then tax on the
// post-discount amount, then the grand total from the already-rounded parts.
// Do not collapse the stages into a single final rounding; the staged rounding
// is part of the contract.
func Compute(items []Item, d Discount, taxPercent float64) Result {
	subtotal := Subtotal(items)
	discount := DiscountAmount(subtotal, d)
	afterDiscount := subtotal - discount
	tax := TaxAmount(afterDiscount, taxPercent)
	return Result{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		GrandTotal:     Round2(afterDiscount + tax),
	}
}
