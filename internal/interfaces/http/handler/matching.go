package handler

import (
	matchingapp "github.com/apmatch/backend/internal/application/matching"
	"github.com/apmatch/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MatchingHandler exposes document registration and matching endpoints
type MatchingHandler struct {
	BaseHandler
	service *matchingapp.MatchingService
	logger  *zap.Logger
}

// NewMatchingHandler creates a new matching handler
func NewMatchingHandler(service *matchingapp.MatchingService, logger *zap.Logger) *MatchingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingHandler{service: service, logger: logger}
}

// RegisterPurchaseOrder ingests a purchase order into the registry
func (h *MatchingHandler) RegisterPurchaseOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var req matchingapp.RegisterPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	if err := h.service.RegisterPurchaseOrder(ctx, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"id": req.ID})
}

// RegisterReceipt ingests a receiving document into the registry
func (h *MatchingHandler) RegisterReceipt(c *gin.Context) {
	ctx := c.Request.Context()

	var req matchingapp.RegisterReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	if err := h.service.RegisterReceipt(ctx, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"id": req.ID})
}

// RegisterInvoice ingests a vendor invoice into the registry
func (h *MatchingHandler) RegisterInvoice(c *gin.Context) {
	ctx := c.Request.Context()

	var req matchingapp.RegisterInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	if err := h.service.RegisterInvoice(ctx, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gin.H{"id": req.ID})
}

// DocumentCounts returns how many documents of each type are registered
func (h *MatchingHandler) DocumentCounts(c *gin.Context) {
	h.Success(c, h.service.DocumentCounts(c.Request.Context()))
}

// MatchInvoice runs the three-way match for a single invoice
func (h *MatchingHandler) MatchInvoice(c *gin.Context) {
	ctx := c.Request.Context()

	var req matchingapp.MatchInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	result, err := h.service.MatchInvoice(ctx, req.InvoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// MatchAllPending runs the match for every pending invoice
func (h *MatchingHandler) MatchAllPending(c *gin.Context) {
	results, err := h.service.MatchAllPending(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// Exceptions lists match results that require manual review
func (h *MatchingHandler) Exceptions(c *gin.Context) {
	h.Success(c, h.service.Exceptions(c.Request.Context()))
}

// AutoApproved lists match results that were approved automatically
func (h *MatchingHandler) AutoApproved(c *gin.Context) {
	h.Success(c, h.service.AutoApproved(c.Request.Context()))
}

// Summary returns aggregate statistics over all recorded matches
func (h *MatchingHandler) Summary(c *gin.Context) {
	h.Success(c, h.service.Summary(c.Request.Context()))
}

// InvoiceHistory lists every recorded match attempt for an invoice
func (h *MatchingHandler) InvoiceHistory(c *gin.Context) {
	invoiceID := c.Param("id")
	if invoiceID == "" {
		h.BadRequest(c, "Invoice ID is required")
		return
	}

	h.Success(c, h.service.InvoiceHistory(c.Request.Context(), invoiceID))
}

// RegisterRoutes registers all matching routes
func (h *MatchingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents")
	{
		documents.POST("/purchase-orders", h.RegisterPurchaseOrder)
		documents.POST("/receipts", h.RegisterReceipt)
		documents.POST("/invoices", h.RegisterInvoice)
		documents.GET("/counts", h.DocumentCounts)
	}

	matches := rg.Group("/matches")
	{
		matches.POST("", h.MatchInvoice)
		matches.POST("/batch", h.MatchAllPending)
		matches.GET("/exceptions", h.Exceptions)
		matches.GET("/auto-approved", h.AutoApproved)
		matches.GET("/summary", h.Summary)
		matches.GET("/invoices/:id", h.InvoiceHistory)
	}
}
