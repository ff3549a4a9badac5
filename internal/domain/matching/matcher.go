package matching

import (
	"fmt"
	"sync"
	"time"

	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Exception reasons attached to match results that need a human
const (
	ReasonInvoiceNotFound = "Invoice not found"
	ReasonNoMatchingPO    = "No matching purchase order found"
	ReasonNoReceipts      = "No receiving documents found for PO"
)

// IDGenerator supplies identifiers for match results
type IDGenerator func() uuid.UUID

// MatcherOption customizes a Matcher at construction
type MatcherOption func(*Matcher)

// WithIDGenerator overrides the match ID source
func WithIDGenerator(gen IDGenerator) MatcherOption {
	return func(m *Matcher) {
		m.newMatchID = gen
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) {
		m.now = now
	}
}

// Matcher runs three-way matches of invoices against purchase orders and
// receiving documents, appending every attempt to the ledger. Tolerance is
// fixed for the lifetime of the instance; changing policy means building a
// new Matcher over the same registry and ledger.
//
// Concurrent Match calls for distinct invoices proceed in parallel; calls
// for the same invoice are serialized so the ledger never interleaves two
// attempts against one document.
type Matcher struct {
	registry  *DocumentRegistry
	ledger    *MatchLedger
	tolerance Tolerance

	newMatchID IDGenerator
	now        func() time.Time

	invoiceLocks sync.Map // invoice ID -> *sync.Mutex
}

// NewMatcher builds a matching engine over the given registry and ledger.
// The tolerance is validated once here; a malformed configuration is a
// construction error, never a per-match failure.
func NewMatcher(registry *DocumentRegistry, ledger *MatchLedger, tolerance Tolerance, opts ...MatcherOption) (*Matcher, error) {
	if registry == nil {
		return nil, shared.NewDomainError("INVALID_REGISTRY", "Document registry cannot be nil")
	}
	if ledger == nil {
		return nil, shared.NewDomainError("INVALID_LEDGER", "Match ledger cannot be nil")
	}
	if err := tolerance.Validate(); err != nil {
		return nil, err
	}

	m := &Matcher{
		registry:   registry,
		ledger:     ledger,
		tolerance:  tolerance,
		newMatchID: uuid.New,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Tolerance returns the configured tolerance bands
func (m *Matcher) Tolerance() Tolerance {
	return m.tolerance
}

// Ledger returns the ledger this engine appends to
func (m *Matcher) Ledger() *MatchLedger {
	return m.ledger
}

// Match runs a three-way match for one invoice. Missing documents are
// outcomes, not errors: the result carries a MISSING_* status and an
// exception reason, and the attempt is recorded on the ledger like any
// other. An error is returned only for unusable input.
func (m *Matcher) Match(invoiceID string) (*MatchResult, error) {
	if invoiceID == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	lock := m.lockInvoice(invoiceID)
	lock.Lock()
	defer lock.Unlock()

	var (
		invoice  *Invoice
		po       *PurchaseOrder
		receipts []*Receipt
	)
	m.registry.View(func(view RegistryView) {
		inv := view.Invoice(invoiceID)
		if inv == nil {
			return
		}
		invoice = inv.Clone()

		candidate := resolvePurchaseOrder(view, inv, m.tolerance.TotalVarianceAbs)
		if candidate == nil {
			return
		}
		po = candidate.Clone()

		for _, rc := range view.ReceiptsForPO(candidate.ID) {
			receipts = append(receipts, rc.Clone())
		}
	})

	if invoice == nil {
		return m.record(m.exceptionResult(invoiceID, nil, nil, nil, MatchStatusMissingInvoice, ReasonInvoiceNotFound)), nil
	}
	if po == nil {
		return m.record(m.exceptionResult(invoiceID, invoice, nil, nil, MatchStatusMissingPO, ReasonNoMatchingPO)), nil
	}
	if len(receipts) == 0 {
		return m.record(m.exceptionResult(invoiceID, invoice, po, nil, MatchStatusMissingReceipt, ReasonNoReceipts)), nil
	}

	result := m.evaluate(invoice, po, receipts)
	m.applyInvoiceStatus(result)
	return m.record(result), nil
}

// MatchAllPending matches every invoice currently in PENDING status using
// the given number of workers. Results are returned in the deterministic
// order of the pending set; individual missing-document outcomes do not
// abort the batch.
func (m *Matcher) MatchAllPending(workers int) []*MatchResult {
	ids := m.registry.PendingInvoiceIDs()
	if len(ids) == 0 {
		return []*MatchResult{}
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	results := make([]*MatchResult, len(ids))
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result, err := m.Match(ids[idx])
				if err != nil {
					continue
				}
				results[idx] = result
			}
		}()
	}
	for idx := range ids {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	out := make([]*MatchResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// FindMatchingPO resolves the purchase order the invoice would be matched
// against, or nil when no candidate qualifies. The returned order is a copy.
func (m *Matcher) FindMatchingPO(invoiceID string) *PurchaseOrder {
	var po *PurchaseOrder
	m.registry.View(func(view RegistryView) {
		inv := view.Invoice(invoiceID)
		if inv == nil {
			return
		}
		if candidate := resolvePurchaseOrder(view, inv, m.tolerance.TotalVarianceAbs); candidate != nil {
			po = candidate.Clone()
		}
	})
	return po
}

// resolvePurchaseOrder applies the two-stage PO resolution: the invoice's
// po_number hint wins outright when it resolves to a matchable order;
// otherwise the vendor's orders are scanned for the one whose subtotal is
// closest to the invoice subtotal within the absolute total band. Earlier
// registration wins ties.
func resolvePurchaseOrder(view RegistryView, inv *Invoice, totalBand decimal.Decimal) *PurchaseOrder {
	if inv.PONumber != "" {
		if po := view.POByNumber(inv.PONumber); po != nil && po.Status.IsMatchable() {
			return po
		}
	}

	var best *PurchaseOrder
	var bestDiff decimal.Decimal
	for _, po := range view.VendorPOs(inv.VendorID) {
		if !po.Status.IsMatchable() {
			continue
		}
		diff := po.Subtotal().Sub(inv.Subtotal).Abs()
		if diff.GreaterThan(totalBand) {
			continue
		}
		if best == nil || diff.LessThan(bestDiff) {
			best = po
			bestDiff = diff
		}
	}
	return best
}

// evaluate runs line alignment, variance aggregation, classification, and
// the approval decision over one invoice, order, and its receipts
func (m *Matcher) evaluate(invoice *Invoice, po *PurchaseOrder, receipts []*Receipt) *MatchResult {
	received := make([]LineItem, 0)
	for _, rc := range receipts {
		received = append(received, rc.Items...)
	}

	lines := MatchLineItems(po.Items, received, invoice.Items)
	qtyVar, priceVar := sumLineVariances(lines)
	variances := VarianceSet{
		Quantity: qtyVar,
		Price:    priceVar,
		Total:    invoice.Subtotal.Sub(po.Subtotal()),
	}

	status := classify(lines)
	autoApproved := m.decideApproval(status, variances, invoice.Total)

	result := &MatchResult{
		MatchID:          m.newMatchID(),
		Status:           status,
		InvoiceID:        invoice.ID,
		Invoice:          invoice,
		PO:               po,
		Receipt:          receipts[0],
		QuantityVariance: variances.Quantity,
		PriceVariance:    variances.Price,
		TotalVariance:    variances.Total,
		LineResults:      lines,
		AutoApproved:     autoApproved,
		RequiresReview:   !autoApproved,
		MatchedAt:        m.now(),
	}
	if result.RequiresReview && status != MatchStatusMatched {
		result.ExceptionReason = fmt.Sprintf("Variance detected: %s", status)
	}
	return result
}

// classify derives the document-level status from the line outcomes.
// Any missing line makes the whole match PARTIAL; otherwise the line
// statuses decide between the variance statuses, UNMATCHED when both
// kinds of variant line are present, and MATCHED when neither is.
// Line statuses, not the summed variances, are the evidence here:
// offsetting line variances cancel in the sums but still disagree.
func classify(lines []LineMatch) MatchStatus {
	for i := range lines {
		if lines[i].Status.IsMissing() {
			return MatchStatusPartial
		}
	}

	hasQty := false
	hasPrice := false
	for i := range lines {
		switch lines[i].Status {
		case LineStatusQuantityVariance:
			hasQty = true
		case LineStatusPriceVariance:
			hasPrice = true
		}
	}
	switch {
	case hasQty && hasPrice:
		return MatchStatusUnmatched
	case hasQty:
		return MatchStatusQuantityVariance
	case hasPrice:
		return MatchStatusPriceVariance
	default:
		return MatchStatusMatched
	}
}

// decideApproval applies the auto-approval policy. Under exact-only,
// approval demands a fully matched result with zero total variance. With
// exact-only disabled, any result within tolerance qualifies, subject to
// the invoice-total ceiling when one is configured.
func (m *Matcher) decideApproval(status MatchStatus, v VarianceSet, invoiceTotal decimal.Decimal) bool {
	if m.tolerance.AutoApproveExactOnly {
		return status == MatchStatusMatched && v.Total.IsZero()
	}
	if !m.tolerance.WithinTolerance(v, invoiceTotal) {
		return false
	}
	if m.tolerance.AutoApproveBelow.IsPositive() && invoiceTotal.GreaterThan(m.tolerance.AutoApproveBelow) {
		return false
	}
	return true
}

// applyInvoiceStatus propagates the match outcome back onto the invoice:
// auto-approved invoices move to APPROVED, exact matches awaiting review
// move to MATCHED, everything else stays where it is.
func (m *Matcher) applyInvoiceStatus(result *MatchResult) {
	switch {
	case result.AutoApproved:
		_ = m.registry.UpdateInvoiceStatus(result.InvoiceID, InvoiceStatusApproved)
	case result.Status == MatchStatusMatched && result.TotalVariance.IsZero():
		_ = m.registry.UpdateInvoiceStatus(result.InvoiceID, InvoiceStatusMatched)
	}
}

// exceptionResult builds the ledger entry for a match that never reached
// line alignment because a document was absent
func (m *Matcher) exceptionResult(invoiceID string, invoice *Invoice, po *PurchaseOrder, receipt *Receipt, status MatchStatus, reason string) *MatchResult {
	return &MatchResult{
		MatchID:          m.newMatchID(),
		Status:           status,
		InvoiceID:        invoiceID,
		Invoice:          invoice,
		PO:               po,
		Receipt:          receipt,
		QuantityVariance: decimal.Zero,
		PriceVariance:    decimal.Zero,
		TotalVariance:    decimal.Zero,
		AutoApproved:     false,
		RequiresReview:   true,
		ExceptionReason:  reason,
		MatchedAt:        m.now(),
	}
}

func (m *Matcher) record(result *MatchResult) *MatchResult {
	m.ledger.Append(result)
	return result
}

func (m *Matcher) lockInvoice(invoiceID string) *sync.Mutex {
	actual, _ := m.invoiceLocks.LoadOrStore(invoiceID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
