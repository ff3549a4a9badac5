package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItem(t *testing.T, itemID string, quantity, unitPrice string) LineItem {
	t.Helper()
	item, err := NewLineItem(itemID, itemID, decimal.RequireFromString(quantity), decimal.RequireFromString(unitPrice), "")
	require.NoError(t, err)
	return *item
}

func TestMatchLineItemsAligned(t *testing.T) {
	po := []LineItem{makeItem(t, "widget", "10", "5.00")}
	receipts := []LineItem{makeItem(t, "widget", "10", "5.00")}
	invoice := []LineItem{makeItem(t, "widget", "10", "5.00")}

	lines := MatchLineItems(po, receipts, invoice)
	require.Len(t, lines, 1)

	lm := lines[0]
	assert.Equal(t, "widget", lm.ItemID)
	assert.Equal(t, LineStatusMatched, lm.Status)
	assert.True(t, lm.QuantityVariance.IsZero())
	assert.True(t, lm.PriceVariance.IsZero())
	require.NotNil(t, lm.POQuantity)
	require.NotNil(t, lm.ReceiptQuantity)
	require.NotNil(t, lm.InvoiceQuantity)
}

func TestMatchLineItemsVariances(t *testing.T) {
	t.Run("quantity against receipt", func(t *testing.T) {
		po := []LineItem{makeItem(t, "widget", "10", "5.00")}
		receipts := []LineItem{makeItem(t, "widget", "7", "5.00")}
		invoice := []LineItem{makeItem(t, "widget", "10", "5.00")}

		lines := MatchLineItems(po, receipts, invoice)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusQuantityVariance, lines[0].Status)
		assert.True(t, lines[0].QuantityVariance.Equal(decimal.NewFromInt(3)))
	})

	t.Run("price against PO", func(t *testing.T) {
		po := []LineItem{makeItem(t, "widget", "10", "5.00")}
		receipts := []LineItem{makeItem(t, "widget", "10", "5.00")}
		invoice := []LineItem{makeItem(t, "widget", "10", "5.50")}

		lines := MatchLineItems(po, receipts, invoice)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusPriceVariance, lines[0].Status)
		assert.True(t, lines[0].PriceVariance.Equal(decimal.RequireFromString("0.50")))
	})

	t.Run("quantity outranks price", func(t *testing.T) {
		po := []LineItem{makeItem(t, "widget", "10", "5.00")}
		receipts := []LineItem{makeItem(t, "widget", "7", "5.00")}
		invoice := []LineItem{makeItem(t, "widget", "10", "5.50")}

		lines := MatchLineItems(po, receipts, invoice)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusQuantityVariance, lines[0].Status)
		assert.False(t, lines[0].PriceVariance.IsZero(), "price variance still reported")
	})
}

func TestMatchLineItemsMissingDocuments(t *testing.T) {
	t.Run("item absent from PO", func(t *testing.T) {
		receipts := []LineItem{makeItem(t, "gizmo", "2", "3.00")}
		invoice := []LineItem{makeItem(t, "gizmo", "2", "3.00")}

		lines := MatchLineItems(nil, receipts, invoice)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusMissingPO, lines[0].Status)
		assert.Nil(t, lines[0].POQuantity)
		assert.True(t, lines[0].QuantityVariance.IsZero(), "invoice agrees with receipt")
	})

	t.Run("item never received", func(t *testing.T) {
		po := []LineItem{makeItem(t, "widget", "10", "5.00")}
		invoice := []LineItem{makeItem(t, "widget", "10", "5.00")}

		lines := MatchLineItems(po, nil, invoice)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusMissingReceipt, lines[0].Status)
		assert.Nil(t, lines[0].ReceiptQuantity)
	})

	t.Run("missing PO outranks missing receipt", func(t *testing.T) {
		invoice := []LineItem{makeItem(t, "gizmo", "2", "3.00")}

		lines := MatchLineItems(nil, nil, invoice)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusMissingPO, lines[0].Status)
	})

	t.Run("received but unbilled line is not a variance", func(t *testing.T) {
		po := []LineItem{makeItem(t, "widget", "10", "5.00")}
		receipts := []LineItem{makeItem(t, "widget", "6", "5.00")}

		lines := MatchLineItems(po, receipts, nil)
		require.Len(t, lines, 1)
		assert.Equal(t, LineStatusMatched, lines[0].Status)
		assert.True(t, lines[0].QuantityVariance.IsZero())
		assert.Nil(t, lines[0].InvoiceQuantity)
	})
}

func TestMatchLineItemsMergesReceipts(t *testing.T) {
	po := []LineItem{makeItem(t, "widget", "10", "5.00")}
	receipts := []LineItem{
		makeItem(t, "widget", "4", "5.00"),
		makeItem(t, "widget", "6", "5.00"),
	}
	invoice := []LineItem{makeItem(t, "widget", "10", "5.00")}

	lines := MatchLineItems(po, receipts, invoice)
	require.Len(t, lines, 1)
	assert.Equal(t, LineStatusMatched, lines[0].Status)
	assert.True(t, lines[0].ReceiptQuantity.Equal(decimal.NewFromInt(10)))
}

func TestMatchLineItemsDeterministicOrder(t *testing.T) {
	po := []LineItem{
		makeItem(t, "zeta", "1", "1.00"),
		makeItem(t, "alpha", "1", "1.00"),
	}
	receipts := []LineItem{makeItem(t, "mid", "1", "1.00")}

	for i := 0; i < 5; i++ {
		lines := MatchLineItems(po, receipts, nil)
		require.Len(t, lines, 3)
		assert.Equal(t, "alpha", lines[0].ItemID)
		assert.Equal(t, "mid", lines[1].ItemID)
		assert.Equal(t, "zeta", lines[2].ItemID)
	}
}

func TestMatchLineItemsUnknownName(t *testing.T) {
	item := makeItem(t, "sku-1", "1", "1.00")
	item.ItemName = ""

	lines := MatchLineItems([]LineItem{item}, nil, nil)
	require.Len(t, lines, 1)
	assert.Equal(t, "Unknown", lines[0].ItemName)
}
