package matching

import (
	"time"

	"github.com/apmatch/backend/internal/domain/matching"
	"github.com/shopspring/decimal"
)

// ==================== Document registration DTOs ====================

// RegisterPurchaseOrderRequest represents a purchase order submitted by an
// upstream procurement system
type RegisterPurchaseOrderRequest struct {
	ID         string             `json:"id" binding:"required,min=1,max=100"`
	PONumber   string             `json:"po_number" binding:"required,min=1,max=100"`
	VendorID   string             `json:"vendor_id" binding:"required,min=1,max=100"`
	VendorName string             `json:"vendor_name" binding:"max=200"`
	OrderDate  time.Time          `json:"order_date"`
	Status     string             `json:"status"`
	Items      []RegisterItemInput `json:"items" binding:"dive"`
}

// RegisterReceiptRequest represents a receiving document
type RegisterReceiptRequest struct {
	ID            string             `json:"id" binding:"required,min=1,max=100"`
	ReceiptNumber string             `json:"receipt_number" binding:"required,min=1,max=100"`
	VendorID      string             `json:"vendor_id" binding:"required,min=1,max=100"`
	VendorName    string             `json:"vendor_name" binding:"max=200"`
	ReceivedDate  time.Time          `json:"received_date"`
	POID          string             `json:"po_id" binding:"max=100"`
	Items         []RegisterItemInput `json:"items" binding:"dive"`
}

// RegisterInvoiceRequest represents a vendor invoice. Subtotal and total
// are intentionally absent: they are always derived from the line items.
type RegisterInvoiceRequest struct {
	ID            string             `json:"id" binding:"required,min=1,max=100"`
	InvoiceNumber string             `json:"invoice_number" binding:"required,min=1,max=100"`
	VendorID      string             `json:"vendor_id" binding:"required,min=1,max=100"`
	VendorName    string             `json:"vendor_name" binding:"max=200"`
	InvoiceDate   time.Time          `json:"invoice_date"`
	DueDate       *time.Time         `json:"due_date"`
	PONumber      string             `json:"po_number" binding:"max=100"`
	Tax           decimal.Decimal    `json:"tax"`
	Shipping      decimal.Decimal    `json:"shipping"`
	Items         []RegisterItemInput `json:"items" binding:"dive"`
}

// RegisterItemInput represents one line item on any document
type RegisterItemInput struct {
	ItemID    string          `json:"item_id" binding:"required,min=1,max=100"`
	ItemName  string          `json:"item_name" binding:"max=200"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit" binding:"max=20"`
}

// ==================== Match DTOs ====================

// MatchInvoiceRequest identifies the invoice to match
type MatchInvoiceRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required,min=1,max=100"`
}

// LineMatchResponse is the per-item view of a match result
type LineMatchResponse struct {
	ItemID           string           `json:"item_id"`
	ItemName         string           `json:"item_name"`
	POQuantity       *decimal.Decimal `json:"po_quantity,omitempty"`
	ReceiptQuantity  *decimal.Decimal `json:"receipt_quantity,omitempty"`
	InvoiceQuantity  *decimal.Decimal `json:"invoice_quantity,omitempty"`
	POPrice          *decimal.Decimal `json:"po_price,omitempty"`
	InvoicePrice     *decimal.Decimal `json:"invoice_price,omitempty"`
	QuantityVariance decimal.Decimal  `json:"quantity_variance"`
	PriceVariance    decimal.Decimal  `json:"price_variance"`
	Status           string           `json:"status"`
}

// MatchResultResponse is the external view of one match attempt
type MatchResultResponse struct {
	MatchID          string              `json:"match_id"`
	Status           string              `json:"status"`
	InvoiceID        string              `json:"invoice_id"`
	PONumber         string              `json:"po_number,omitempty"`
	ReceiptNumber    string              `json:"receipt_number,omitempty"`
	QuantityVariance decimal.Decimal     `json:"quantity_variance"`
	PriceVariance    decimal.Decimal     `json:"price_variance"`
	TotalVariance    decimal.Decimal     `json:"total_variance"`
	LineResults      []LineMatchResponse `json:"line_results,omitempty"`
	AutoApproved     bool                `json:"auto_approved"`
	RequiresReview   bool                `json:"requires_review"`
	ExceptionReason  string              `json:"exception_reason,omitempty"`
	MatchedAt        time.Time           `json:"matched_at"`
}

// MatchSummaryResponse aggregates ledger activity
type MatchSummaryResponse struct {
	TotalMatches    int             `json:"total_matches"`
	ByStatus        map[string]int  `json:"by_status"`
	AutoApproved    int             `json:"auto_approved"`
	RequiringReview int             `json:"requiring_review"`
	TotalVariance   decimal.Decimal `json:"total_variance"`
	MeanVariance    decimal.Decimal `json:"mean_variance"`
	MatchRate       decimal.Decimal `json:"match_rate"`
}

// DocumentCountsResponse reports registry volume
type DocumentCountsResponse struct {
	PurchaseOrders int `json:"purchase_orders"`
	Receipts       int `json:"receipts"`
	Invoices       int `json:"invoices"`
}

// toMatchResultResponse maps a domain result onto the transport view
func toMatchResultResponse(result *matching.MatchResult) *MatchResultResponse {
	resp := &MatchResultResponse{
		MatchID:          result.MatchID.String(),
		Status:           result.Status.String(),
		InvoiceID:        result.InvoiceID,
		QuantityVariance: result.QuantityVariance,
		PriceVariance:    result.PriceVariance,
		TotalVariance:    result.TotalVariance,
		AutoApproved:     result.AutoApproved,
		RequiresReview:   result.RequiresReview,
		ExceptionReason:  result.ExceptionReason,
		MatchedAt:        result.MatchedAt,
	}
	if result.PO != nil {
		resp.PONumber = result.PO.PONumber
	}
	if result.Receipt != nil {
		resp.ReceiptNumber = result.Receipt.ReceiptNumber
	}
	for _, line := range result.LineResults {
		resp.LineResults = append(resp.LineResults, LineMatchResponse{
			ItemID:           line.ItemID,
			ItemName:         line.ItemName,
			POQuantity:       line.POQuantity,
			ReceiptQuantity:  line.ReceiptQuantity,
			InvoiceQuantity:  line.InvoiceQuantity,
			POPrice:          line.POPrice,
			InvoicePrice:     line.InvoicePrice,
			QuantityVariance: line.QuantityVariance,
			PriceVariance:    line.PriceVariance,
			Status:           line.Status.String(),
		})
	}
	return resp
}

func toMatchResultResponses(results []*matching.MatchResult) []*MatchResultResponse {
	out := make([]*MatchResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toMatchResultResponse(r))
	}
	return out
}

func toMatchSummaryResponse(summary matching.MatchSummary) *MatchSummaryResponse {
	byStatus := make(map[string]int, len(summary.ByStatus))
	for status, count := range summary.ByStatus {
		byStatus[status.String()] = count
	}
	return &MatchSummaryResponse{
		TotalMatches:    summary.TotalMatches,
		ByStatus:        byStatus,
		AutoApproved:    summary.AutoApproved,
		RequiringReview: summary.RequiringReview,
		TotalVariance:   summary.TotalVariance,
		MeanVariance:    summary.MeanVariance,
		MatchRate:       summary.MatchRate,
	}
}
