package billing

import (
	"github.com/shopspring/decimal"

	"billgen/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of a bill.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxAmount  float64 `json:"taxAmount"`
	GrandTotal float64 `json:"grandTotal"`
}

// ComputeTotals sums item amounts, applies taxRate as a percentage of the
// subtotal and subtracts the absolute discount. The result is not clamped,
// so a large discount yields a negative grand total.
func ComputeTotals(items []models.BillItem, taxRate, discount float64) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Amount))
	}
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Div(hundred)
	grand := subtotal.Add(tax).Sub(decimal.NewFromFloat(discount))

	return Totals{
		Subtotal:   subtotal.InexactFloat64(),
		TaxAmount:  tax.InexactFloat64(),
		GrandTotal: grand.InexactFloat64(),
	}
}
