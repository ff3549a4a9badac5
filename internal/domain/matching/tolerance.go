package matching

import (
	"fmt"

	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tolerance holds the variance bands within which a mismatch is still
// eligible for auto-approval. A Tolerance is immutable per engine instance.
//
// PriceVariancePct and QuantityVariancePct are part of the recognized
// configuration surface but are not consulted by the decision path; only
// the absolute bands and the total percentage band are enforced. This
// mirrors the reference behavior and is covered by tests rather than
// silently changed.
type Tolerance struct {
	QuantityVariancePct  decimal.Decimal
	QuantityVarianceAbs  decimal.Decimal
	PriceVariancePct     decimal.Decimal
	PriceVarianceAbs     decimal.Decimal
	TotalVariancePct     decimal.Decimal
	TotalVarianceAbs     decimal.Decimal
	AutoApproveBelow     decimal.Decimal // invoice-total ceiling, zero = no ceiling
	AutoApproveExactOnly bool
}

// DefaultTolerance returns the zero-variance, exact-only configuration
func DefaultTolerance() Tolerance {
	return Tolerance{
		QuantityVariancePct:  decimal.Zero,
		QuantityVarianceAbs:  decimal.Zero,
		PriceVariancePct:     decimal.Zero,
		PriceVarianceAbs:     decimal.Zero,
		TotalVariancePct:     decimal.Zero,
		TotalVarianceAbs:     decimal.Zero,
		AutoApproveBelow:     decimal.Zero,
		AutoApproveExactOnly: true,
	}
}

// Validate rejects configurations with negative thresholds
func (t Tolerance) Validate() error {
	for _, check := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"quantity_variance_pct", t.QuantityVariancePct},
		{"quantity_variance_abs", t.QuantityVarianceAbs},
		{"price_variance_pct", t.PriceVariancePct},
		{"price_variance_abs", t.PriceVarianceAbs},
		{"total_variance_pct", t.TotalVariancePct},
		{"total_variance_abs", t.TotalVarianceAbs},
		{"auto_approve_below", t.AutoApproveBelow},
	} {
		if check.value.IsNegative() {
			return shared.NewDomainError("INVALID_TOLERANCE",
				fmt.Sprintf("Tolerance %s cannot be negative", check.name))
		}
	}
	return nil
}
