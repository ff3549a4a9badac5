package matching

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LineMatch is the per-item outcome of aligning the three documents.
// Quantities and prices are pointers: nil means the item does not appear
// on that document at all.
type LineMatch struct {
	ItemID           string           `json:"item_id"`
	ItemName         string           `json:"item_name"`
	POQuantity       *decimal.Decimal `json:"po_quantity,omitempty"`
	ReceiptQuantity  *decimal.Decimal `json:"receipt_quantity,omitempty"`
	InvoiceQuantity  *decimal.Decimal `json:"invoice_quantity,omitempty"`
	POPrice          *decimal.Decimal `json:"po_price,omitempty"`
	InvoicePrice     *decimal.Decimal `json:"invoice_price,omitempty"`
	QuantityVariance decimal.Decimal  `json:"quantity_variance"`
	PriceVariance    decimal.Decimal  `json:"price_variance"`
	Status           LineMatchStatus  `json:"status"`
}

// MatchLineItems aligns line items across PO, receipts, and invoice by item
// identity. The union of identities is evaluated: an item may legitimately
// appear on only a subset of the documents. Receipt items from multiple
// partial deliveries are merged by identity before alignment.
//
// Per identity, the status is derived by priority: no PO line, then no
// receipt line, then invoice-vs-receipt quantity disagreement, then
// invoice-vs-PO price disagreement, else matched. Quantity is validated
// against what was received (pay for what arrived); price against what was
// contracted on the PO. Variance checks only fire when the invoice carries
// the line: goods received but not yet billed are not a disagreement.
//
// Results are ordered by item identity so repeated runs over the same
// documents produce identical output.
func MatchLineItems(poItems, receiptItems, invoiceItems []LineItem) []LineMatch {
	poByItem := indexByItemID(poItems)
	receiptByItem := mergeByItemID(receiptItems)
	invoiceByItem := indexByItemID(invoiceItems)

	itemIDs := make([]string, 0, len(poByItem)+len(receiptByItem)+len(invoiceByItem))
	seen := make(map[string]bool)
	for _, set := range []map[string]*LineItem{poByItem, receiptByItem, invoiceByItem} {
		for id := range set {
			if !seen[id] {
				seen[id] = true
				itemIDs = append(itemIDs, id)
			}
		}
	}
	sort.Strings(itemIDs)

	results := make([]LineMatch, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		poItem := poByItem[itemID]
		receiptItem := receiptByItem[itemID]
		invoiceItem := invoiceByItem[itemID]

		lm := LineMatch{
			ItemID:           itemID,
			ItemName:         firstItemName(poItem, receiptItem, invoiceItem),
			QuantityVariance: decimal.Zero,
			PriceVariance:    decimal.Zero,
		}
		if poItem != nil {
			lm.POQuantity = decimalPtr(poItem.Quantity)
			lm.POPrice = decimalPtr(poItem.UnitPrice)
		}
		if receiptItem != nil {
			lm.ReceiptQuantity = decimalPtr(receiptItem.Quantity)
		}
		if invoiceItem != nil {
			lm.InvoiceQuantity = decimalPtr(invoiceItem.Quantity)
			lm.InvoicePrice = decimalPtr(invoiceItem.UnitPrice)
		}

		if invoiceItem != nil && receiptItem != nil {
			lm.QuantityVariance = invoiceItem.Quantity.Sub(receiptItem.Quantity)
		}
		if invoiceItem != nil && poItem != nil {
			lm.PriceVariance = invoiceItem.UnitPrice.Sub(poItem.UnitPrice)
		}

		lm.Status = deriveLineStatus(poItem, receiptItem, invoiceItem, lm.QuantityVariance, lm.PriceVariance)
		results = append(results, lm)
	}
	return results
}

// deriveLineStatus applies the classification priority for one identity
func deriveLineStatus(poItem, receiptItem, invoiceItem *LineItem, qtyVar, priceVar decimal.Decimal) LineMatchStatus {
	switch {
	case poItem == nil:
		return LineStatusMissingPO
	case receiptItem == nil:
		return LineStatusMissingReceipt
	case invoiceItem != nil && !qtyVar.IsZero():
		return LineStatusQuantityVariance
	case invoiceItem != nil && !priceVar.IsZero():
		return LineStatusPriceVariance
	default:
		return LineStatusMatched
	}
}

func indexByItemID(items []LineItem) map[string]*LineItem {
	index := make(map[string]*LineItem, len(items))
	for i := range items {
		index[items[i].ItemID] = &items[i]
	}
	return index
}

// mergeByItemID combines items sharing an identity into one aggregate line,
// summing quantities. Partial deliveries arrive as separate receipts; the
// matcher compares the invoice against everything received.
func mergeByItemID(items []LineItem) map[string]*LineItem {
	index := make(map[string]*LineItem, len(items))
	for i := range items {
		existing, ok := index[items[i].ItemID]
		if !ok {
			merged := items[i]
			index[items[i].ItemID] = &merged
			continue
		}
		existing.Quantity = existing.Quantity.Add(items[i].Quantity)
	}
	return index
}

func firstItemName(candidates ...*LineItem) string {
	for _, c := range candidates {
		if c != nil && c.ItemName != "" {
			return c.ItemName
		}
	}
	return "Unknown"
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
