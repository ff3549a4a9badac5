package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	matchingapp "github.com/apmatch/backend/internal/application/matching"
	domain "github.com/apmatch/backend/internal/domain/matching"
	"github.com/apmatch/backend/internal/interfaces/http/dto"
	"github.com/apmatch/backend/internal/interfaces/http/middleware"
	"github.com/apmatch/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	tolerance := domain.Tolerance{
		PriceVarianceAbs:     decimal.NewFromInt(1),
		TotalVarianceAbs:     decimal.NewFromInt(20),
		AutoApproveExactOnly: false,
	}
	service, err := matchingapp.NewMatchingService(tolerance, zap.NewNop())
	require.NoError(t, err)

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := router.NewRouter(engine)
	r.Register(NewMatchingHandler(service, zap.NewNop()))
	r.Register(NewSystemHandler())
	r.Setup()

	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func registerDocuments(t *testing.T, engine *gin.Engine, invoicePrice string) {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/api/v1/documents/purchase-orders", gin.H{
		"id":        "po-1",
		"po_number": "PO-1001",
		"vendor_id": "vendor-1",
		"items": []gin.H{
			{"item_id": "widget", "item_name": "Widget", "quantity": "10", "unit_price": "5.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/api/v1/documents/receipts", gin.H{
		"id":             "rcpt-1",
		"receipt_number": "RCPT-1",
		"vendor_id":      "vendor-1",
		"po_id":          "po-1",
		"items": []gin.H{
			{"item_id": "widget", "item_name": "Widget", "quantity": "10"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/api/v1/documents/invoices", gin.H{
		"id":             "inv-1",
		"invoice_number": "INV-1",
		"vendor_id":      "vendor-1",
		"po_number":      "PO-1001",
		"items": []gin.H{
			{"item_id": "widget", "item_name": "Widget", "quantity": "10", "unit_price": invoicePrice},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRegisterPurchaseOrderValidation(t *testing.T) {
	engine := newTestServer(t)

	t.Run("missing po_number rejected", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/documents/purchase-orders", gin.H{
			"id":        "po-bad",
			"vendor_id": "vendor-1",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.Details)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/purchase-orders", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative quantity is a domain rejection", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/documents/purchase-orders", gin.H{
			"id":        "po-neg",
			"po_number": "PO-NEG",
			"vendor_id": "vendor-1",
			"items": []gin.H{
				{"item_id": "widget", "quantity": "-1", "unit_price": "5.00"},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidDocument, resp.Error.Code)
	})
}

func TestRegisterAndCountDocuments(t *testing.T) {
	engine := newTestServer(t)
	registerDocuments(t, engine, "5.00")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/documents/counts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.True(t, resp.Success)
	counts := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), counts["purchase_orders"])
	assert.Equal(t, float64(1), counts["receipts"])
	assert.Equal(t, float64(1), counts["invoices"])
}

func TestMatchInvoiceEndpoint(t *testing.T) {
	t.Run("exact match auto approves", func(t *testing.T) {
		engine := newTestServer(t)
		registerDocuments(t, engine, "5.00")

		w := doJSON(t, engine, http.MethodPost, "/api/v1/matches", gin.H{"invoice_id": "inv-1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeResponse(t, w)
		require.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "MATCHED", data["status"])
		assert.Equal(t, true, data["auto_approved"])
		assert.Equal(t, "PO-1001", data["po_number"])
		assert.Equal(t, "RCPT-1", data["receipt_number"])
		assert.NotEmpty(t, data["match_id"])
	})

	t.Run("unknown invoice is an exception outcome, not an error", func(t *testing.T) {
		engine := newTestServer(t)

		w := doJSON(t, engine, http.MethodPost, "/api/v1/matches", gin.H{"invoice_id": "ghost"})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		require.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "MISSING_INVOICE", data["status"])
		assert.Equal(t, true, data["requires_review"])
		assert.Equal(t, "Invoice not found", data["exception_reason"])
	})

	t.Run("missing invoice_id rejected", func(t *testing.T) {
		engine := newTestServer(t)

		w := doJSON(t, engine, http.MethodPost, "/api/v1/matches", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMatchBatchAndSummaryEndpoints(t *testing.T) {
	engine := newTestServer(t)
	registerDocuments(t, engine, "5.00")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/matches/batch", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.True(t, resp.Success)
	results := resp.Data.([]interface{})
	require.Len(t, results, 1)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/matches/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp = decodeResponse(t, w)
	summary := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), summary["total_matches"])
	assert.Equal(t, float64(1), summary["auto_approved"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/matches/auto-approved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	assert.Len(t, resp.Data.([]interface{}), 1)
}

func TestExceptionsEndpoint(t *testing.T) {
	engine := newTestServer(t)
	registerDocuments(t, engine, "9.00")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/matches", gin.H{"invoice_id": "inv-1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/matches/exceptions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	exceptions := resp.Data.([]interface{})
	require.Len(t, exceptions, 1)
	first := exceptions[0].(map[string]interface{})
	assert.Equal(t, "PRICE_VARIANCE", first["status"])
	assert.Equal(t, true, first["requires_review"])
}

func TestInvoiceHistoryEndpoint(t *testing.T) {
	engine := newTestServer(t)
	registerDocuments(t, engine, "5.00")

	for i := 0; i < 2; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/matches", gin.H{"invoice_id": "inv-1"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/v1/matches/invoices/inv-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data.([]interface{}), 2)
}

func TestRequestIDPropagatedToErrors(t *testing.T) {
	engine := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}
