package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchResult is the outcome of one match attempt. It is created once per
// attempt and never mutated afterward; re-matching the same invoice
// produces a new, independent result. InvoiceID always carries the
// requested identifier, even when the invoice itself was not found.
type MatchResult struct {
	MatchID          uuid.UUID       `json:"match_id"`
	Status           MatchStatus     `json:"status"`
	InvoiceID        string          `json:"invoice_id"`
	Invoice          *Invoice        `json:"invoice,omitempty"`
	PO               *PurchaseOrder  `json:"po,omitempty"`
	Receipt          *Receipt        `json:"receipt,omitempty"` // primary receipt when several exist
	QuantityVariance decimal.Decimal `json:"quantity_variance"`
	PriceVariance    decimal.Decimal `json:"price_variance"`
	TotalVariance    decimal.Decimal `json:"total_variance"`
	LineResults      []LineMatch     `json:"line_results,omitempty"`
	AutoApproved     bool            `json:"auto_approved"`
	RequiresReview   bool            `json:"requires_review"`
	ExceptionReason  string          `json:"exception_reason,omitempty"`
	MatchedAt        time.Time       `json:"matched_at"`
}

// IsExactMatch returns true when the match carries no variances at all
func (r *MatchResult) IsExactMatch() bool {
	return r.Status == MatchStatusMatched &&
		r.QuantityVariance.IsZero() &&
		r.PriceVariance.IsZero()
}

// VariancePercentage returns the total variance as a percentage of the
// invoice total, zero when no invoice or a zero total is attached
func (r *MatchResult) VariancePercentage() decimal.Decimal {
	if r.Invoice == nil || !r.Invoice.Total.IsPositive() {
		return decimal.Zero
	}
	return r.TotalVariance.Abs().Div(r.Invoice.Total).Mul(decimal.NewFromInt(100))
}
