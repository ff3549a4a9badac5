package matching

import "context"

// MatchRecordRepository archives match results to durable storage. The
// in-memory ledger remains the source of truth for the running engine;
// the archive exists for audit trails that outlive the process.
type MatchRecordRepository interface {
	// Save persists one match result
	Save(ctx context.Context, result *MatchResult) error

	// FindByInvoiceID returns the archived attempts for an invoice in
	// ascending MatchedAt order
	FindByInvoiceID(ctx context.Context, invoiceID string) ([]*MatchResult, error)

	// FindExceptions returns archived attempts that required review
	FindExceptions(ctx context.Context) ([]*MatchResult, error)

	// Count returns the number of archived attempts
	Count(ctx context.Context) (int64, error)
}
