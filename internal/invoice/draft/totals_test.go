package draft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotals(t *testing.T) {
	items := []LineItem{
		{Description: "Design", Quantity: 1, Rate: 75},
		{Description: "Build", Quantity: 1, Rate: 75},
		{Description: "Stock photos", Quantity: 2, Rate: 50, IsCustom: true},
	}

	totals := CalculateTotals(items, 10, 20)

	assert.Equal(t, 250.0, totals.Subtotal)
	assert.Equal(t, 25.0, totals.TaxAmount)
	assert.Equal(t, 20.0, totals.Discount)
	assert.Equal(t, 255.0, totals.Total)
}

func TestCalculateTotalsCoercesFactors(t *testing.T) {
	items := []LineItem{
		{Quantity: 0, Rate: 0},
		{Quantity: math.NaN(), Rate: math.Inf(1)},
		{Quantity: -3, Rate: 10},
	}

	totals := CalculateTotals(items, 0, 0)

	// each unusable factor becomes 1, never 0
	assert.Equal(t, 12.0, totals.Subtotal)
	assert.Equal(t, 12.0, totals.Total)
}

func TestCalculateTotalsIgnoresBadTaxAndDiscount(t *testing.T) {
	items := []LineItem{{Quantity: 2, Rate: 50}}

	totals := CalculateTotals(items, -5, math.NaN())
	assert.Equal(t, 0.0, totals.TaxAmount)
	assert.Equal(t, 0.0, totals.Discount)
	assert.Equal(t, 100.0, totals.Total)

	totals = CalculateTotals(items, math.NaN(), -10)
	assert.Equal(t, 0.0, totals.TaxAmount)
	assert.Equal(t, 0.0, totals.Discount)
}

func TestCalculateTotalsEmpty(t *testing.T) {
	totals := CalculateTotals(nil, 10, 5)

	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.TaxAmount)
	assert.Equal(t, 5.0, totals.Discount)
	assert.Equal(t, -5.0, totals.Total)
}
