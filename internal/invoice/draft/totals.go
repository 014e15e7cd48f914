package draft

import "math"

// Totals is the derived money view of a draft. It is recomputed from the
// line items on every read and never cached.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}

// coerceFactor normalizes a quantity or rate for calculation. Missing or
// unusable values fall back to 1, never 0, so a half-filled row cannot
// silently zero out.
func coerceFactor(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 1
	}
	return v
}

// coerceDiscount normalizes a discount amount; unusable values become 0.
func coerceDiscount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// CalculateTotals folds line items and the tax/discount knobs into totals.
func CalculateTotals(items []LineItem, taxPercentage, discountAmount float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount()
	}

	tax := taxPercentage
	if math.IsNaN(tax) || math.IsInf(tax, 0) || tax < 0 {
		tax = 0
	}

	taxAmount := subtotal * (tax / 100)
	discount := coerceDiscount(discountAmount)

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Discount:  discount,
		Total:     subtotal + taxAmount - discount,
	}
}
