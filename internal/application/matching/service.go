package matching

import (
	"context"

	"github.com/apmatch/backend/internal/domain/matching"
	"go.uber.org/zap"
)

// MatchingService orchestrates document intake, three-way matching, and
// ledger reporting. It owns the registry, matcher, and ledger for the
// process and optionally mirrors every result into a durable archive.
type MatchingService struct {
	registry *matching.DocumentRegistry
	matcher  *matching.Matcher
	ledger   *matching.MatchLedger

	archive      matching.MatchRecordRepository
	batchWorkers int
	logger       *zap.Logger
}

// ServiceOption customizes a MatchingService at construction
type ServiceOption func(*MatchingService)

// WithArchive mirrors match results into durable storage. Archive failures
// are logged and never fail the match itself.
func WithArchive(repo matching.MatchRecordRepository) ServiceOption {
	return func(s *MatchingService) {
		s.archive = repo
	}
}

// WithBatchWorkers sets the concurrency of batch matching
func WithBatchWorkers(workers int) ServiceOption {
	return func(s *MatchingService) {
		if workers > 0 {
			s.batchWorkers = workers
		}
	}
}

// NewMatchingService wires a matching engine with the given tolerance
func NewMatchingService(tolerance matching.Tolerance, logger *zap.Logger, opts ...ServiceOption) (*MatchingService, error) {
	registry := matching.NewDocumentRegistry()
	ledger := matching.NewMatchLedger()
	matcher, err := matching.NewMatcher(registry, ledger, tolerance)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MatchingService{
		registry:     registry,
		matcher:      matcher,
		ledger:       ledger,
		batchWorkers: 4,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterPurchaseOrder validates and stores a purchase order
func (s *MatchingService) RegisterPurchaseOrder(ctx context.Context, req RegisterPurchaseOrderRequest) error {
	po, err := matching.NewPurchaseOrder(req.ID, req.PONumber, req.VendorID, req.VendorName, req.OrderDate)
	if err != nil {
		return err
	}
	if req.Status != "" {
		po.Status = matching.PurchaseOrderStatus(req.Status)
	}
	for _, item := range req.Items {
		if _, err := po.AddItem(item.ItemID, item.ItemName, item.Quantity, item.UnitPrice, item.Unit); err != nil {
			return err
		}
	}
	if err := s.registry.AddPurchaseOrder(po); err != nil {
		return err
	}

	s.logger.Info("purchase order registered",
		zap.String("po_id", po.ID),
		zap.String("po_number", po.PONumber),
		zap.String("vendor_id", po.VendorID),
		zap.Int("items", po.ItemCount()))
	return nil
}

// RegisterReceipt validates and stores a receiving document
func (s *MatchingService) RegisterReceipt(ctx context.Context, req RegisterReceiptRequest) error {
	rc, err := matching.NewReceipt(req.ID, req.ReceiptNumber, req.VendorID, req.VendorName, req.ReceivedDate, req.POID)
	if err != nil {
		return err
	}
	for _, item := range req.Items {
		if _, err := rc.AddItem(item.ItemID, item.ItemName, item.Quantity, item.UnitPrice, item.Unit); err != nil {
			return err
		}
	}
	if err := s.registry.AddReceipt(rc); err != nil {
		return err
	}

	s.logger.Info("receipt registered",
		zap.String("receipt_id", rc.ID),
		zap.String("po_id", rc.POID),
		zap.Int("items", len(rc.Items)))
	return nil
}

// RegisterInvoice validates and stores a vendor invoice. Totals are always
// derived from the line items, tax, and shipping.
func (s *MatchingService) RegisterInvoice(ctx context.Context, req RegisterInvoiceRequest) error {
	inv, err := matching.NewInvoice(req.ID, req.InvoiceNumber, req.VendorID, req.VendorName, req.InvoiceDate)
	if err != nil {
		return err
	}
	inv.PONumber = req.PONumber
	inv.DueDate = req.DueDate
	for _, item := range req.Items {
		if _, err := inv.AddItem(item.ItemID, item.ItemName, item.Quantity, item.UnitPrice, item.Unit); err != nil {
			return err
		}
	}
	if err := inv.SetTax(req.Tax); err != nil {
		return err
	}
	if err := inv.SetShipping(req.Shipping); err != nil {
		return err
	}
	if err := s.registry.AddInvoice(inv); err != nil {
		return err
	}

	s.logger.Info("invoice registered",
		zap.String("invoice_id", inv.ID),
		zap.String("po_number", inv.PONumber),
		zap.String("total", inv.Total.String()))
	return nil
}

// MatchInvoice runs a three-way match for one invoice
func (s *MatchingService) MatchInvoice(ctx context.Context, invoiceID string) (*MatchResultResponse, error) {
	result, err := s.matcher.Match(invoiceID)
	if err != nil {
		return nil, err
	}

	s.logMatch(result)
	s.archiveResult(ctx, result)
	return toMatchResultResponse(result), nil
}

// MatchAllPending matches every pending invoice
func (s *MatchingService) MatchAllPending(ctx context.Context) ([]*MatchResultResponse, error) {
	results := s.matcher.MatchAllPending(s.batchWorkers)

	approved := 0
	for _, r := range results {
		if r.AutoApproved {
			approved++
		}
		s.archiveResult(ctx, r)
	}
	s.logger.Info("batch match completed",
		zap.Int("matched", len(results)),
		zap.Int("auto_approved", approved))
	return toMatchResultResponses(results), nil
}

// Exceptions returns every recorded result awaiting review
func (s *MatchingService) Exceptions(ctx context.Context) []*MatchResultResponse {
	return toMatchResultResponses(s.ledger.Exceptions())
}

// AutoApproved returns every auto-approved result
func (s *MatchingService) AutoApproved(ctx context.Context) []*MatchResultResponse {
	return toMatchResultResponses(s.ledger.AutoApproved())
}

// InvoiceHistory returns the full match history of one invoice
func (s *MatchingService) InvoiceHistory(ctx context.Context, invoiceID string) []*MatchResultResponse {
	return toMatchResultResponses(s.ledger.ResultsForInvoice(invoiceID))
}

// Summary aggregates all recorded match activity
func (s *MatchingService) Summary(ctx context.Context) *MatchSummaryResponse {
	return toMatchSummaryResponse(s.ledger.Summary())
}

// DocumentCounts reports registry volume
func (s *MatchingService) DocumentCounts(ctx context.Context) *DocumentCountsResponse {
	pos, receipts, invoices := s.registry.DocumentCounts()
	return &DocumentCountsResponse{
		PurchaseOrders: pos,
		Receipts:       receipts,
		Invoices:       invoices,
	}
}

func (s *MatchingService) logMatch(result *matching.MatchResult) {
	fields := []zap.Field{
		zap.String("match_id", result.MatchID.String()),
		zap.String("invoice_id", result.InvoiceID),
		zap.String("status", result.Status.String()),
		zap.Bool("auto_approved", result.AutoApproved),
	}
	if result.RequiresReview {
		fields = append(fields, zap.String("reason", result.ExceptionReason))
		s.logger.Warn("match requires review", fields...)
		return
	}
	s.logger.Info("match completed", fields...)
}

func (s *MatchingService) archiveResult(ctx context.Context, result *matching.MatchResult) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(ctx, result); err != nil {
		s.logger.Error("failed to archive match result",
			zap.String("match_id", result.MatchID.String()),
			zap.Error(err))
	}
}
