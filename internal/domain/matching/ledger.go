package matching

import (
	"sync"

	"github.com/shopspring/decimal"
)

// MatchLedger is the append-only record of every match attempt. Results
// are never overwritten: re-matching an invoice appends a new entry and
// the full history is preserved. The ledger is safe for concurrent use.
type MatchLedger struct {
	mu      sync.RWMutex
	results []*MatchResult
}

// NewMatchLedger creates an empty ledger
func NewMatchLedger() *MatchLedger {
	return &MatchLedger{
		results: make([]*MatchResult, 0),
	}
}

// Append records a completed match attempt
func (l *MatchLedger) Append(result *MatchResult) {
	if result == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
}

// Len returns the number of recorded attempts
func (l *MatchLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.results)
}

// All returns every recorded result in append order. Consumers must treat
// the results as read-only history.
func (l *MatchLedger) All() []*MatchResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*MatchResult, len(l.results))
	copy(out, l.results)
	return out
}

// Exceptions returns all results that require human review
func (l *MatchLedger) Exceptions() []*MatchResult {
	return l.filter(func(r *MatchResult) bool { return r.RequiresReview })
}

// AutoApproved returns all auto-approved results
func (l *MatchLedger) AutoApproved() []*MatchResult {
	return l.filter(func(r *MatchResult) bool { return r.AutoApproved })
}

// ResultsForInvoice returns the match history of one invoice in append order
func (l *MatchLedger) ResultsForInvoice(invoiceID string) []*MatchResult {
	return l.filter(func(r *MatchResult) bool { return r.InvoiceID == invoiceID })
}

func (l *MatchLedger) filter(keep func(*MatchResult) bool) []*MatchResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*MatchResult, 0)
	for _, r := range l.results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// MatchSummary aggregates ledger activity for reporting consumers
type MatchSummary struct {
	TotalMatches    int                 `json:"total_matches"`
	ByStatus        map[MatchStatus]int `json:"by_status"`
	AutoApproved    int                 `json:"auto_approved"`
	RequiringReview int                 `json:"requiring_review"`
	TotalVariance   decimal.Decimal     `json:"total_variance"`
	MeanVariance    decimal.Decimal     `json:"mean_variance"`
	MatchRate       decimal.Decimal     `json:"match_rate"` // MATCHED / total, as a percentage
}

// Summary computes counts by status, the match rate, and the mean total
// variance across all recorded attempts
func (l *MatchLedger) Summary() MatchSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := MatchSummary{
		ByStatus:      make(map[MatchStatus]int),
		TotalVariance: decimal.Zero,
		MeanVariance:  decimal.Zero,
		MatchRate:     decimal.Zero,
	}
	if len(l.results) == 0 {
		return summary
	}

	matched := 0
	for _, r := range l.results {
		summary.ByStatus[r.Status]++
		if r.AutoApproved {
			summary.AutoApproved++
		}
		if r.RequiresReview {
			summary.RequiringReview++
		}
		if r.Status == MatchStatusMatched {
			matched++
		}
		summary.TotalVariance = summary.TotalVariance.Add(r.TotalVariance)
	}

	total := decimal.NewFromInt(int64(len(l.results)))
	summary.TotalMatches = len(l.results)
	summary.MeanVariance = summary.TotalVariance.Div(total)
	summary.MatchRate = decimal.NewFromInt(int64(matched)).Div(total).Mul(decimal.NewFromInt(100))
	return summary
}
