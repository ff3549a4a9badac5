package matching

import "github.com/shopspring/decimal"

// VarianceSet holds the document-level variances of one match attempt.
// Quantity and Price are sums of the per-line variances; Total is
// invoice subtotal minus PO subtotal, computed independently of the
// line-level sums. Disagreement between the two is itself a data-quality
// signal surfaced on the MatchResult.
type VarianceSet struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// IsZero returns true when every dimension is zero
func (v VarianceSet) IsZero() bool {
	return v.Quantity.IsZero() && v.Price.IsZero() && v.Total.IsZero()
}

// sumLineVariances aggregates the per-line quantity and price variances
func sumLineVariances(lines []LineMatch) (quantity, price decimal.Decimal) {
	quantity = decimal.Zero
	price = decimal.Zero
	for i := range lines {
		quantity = quantity.Add(lines[i].QuantityVariance)
		price = price.Add(lines[i].PriceVariance)
	}
	return quantity, price
}

// WithinTolerance tests the variances against the configured bands.
// Every dimension must pass (logical AND): a variance passes when it is
// zero or its magnitude lies within the absolute band; the total variance
// additionally passes when within the percentage band of the invoice
// total. The declared price percentage band is not consulted.
func (t Tolerance) WithinTolerance(v VarianceSet, invoiceTotal decimal.Decimal) bool {
	if !v.Quantity.IsZero() && v.Quantity.Abs().GreaterThan(t.QuantityVarianceAbs) {
		return false
	}
	if !v.Price.IsZero() && v.Price.Abs().GreaterThan(t.PriceVarianceAbs) {
		return false
	}
	if !v.Total.IsZero() {
		withinAbs := v.Total.Abs().LessThanOrEqual(t.TotalVarianceAbs)
		withinPct := false
		if t.TotalVariancePct.IsPositive() && invoiceTotal.IsPositive() {
			pct := v.Total.Abs().Div(invoiceTotal).Mul(decimal.NewFromInt(100))
			withinPct = pct.LessThanOrEqual(t.TotalVariancePct)
		}
		if !withinAbs && !withinPct {
			return false
		}
	}
	return true
}
