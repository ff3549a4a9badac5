package matching

import (
	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUnit is the unit of measure assumed when none is supplied
const DefaultUnit = "each"

// LineItem is a single line on a purchase order, receipt, or invoice.
// A line item is owned exclusively by its parent document and never shared.
type LineItem struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	Description string          `json:"description,omitempty"`
}

// NewLineItem creates a validated line item. The line ID is generated;
// itemID is the cross-document identity used for matching.
func NewLineItem(itemID, itemName string, quantity, unitPrice decimal.Decimal, unit string) (*LineItem, error) {
	if unit == "" {
		unit = DefaultUnit
	}
	item := &LineItem{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		ItemName:  itemName,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Unit:      unit,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the data-integrity rules for a line item
func (l *LineItem) Validate() error {
	if l.ItemID == "" {
		return shared.NewDomainError("INVALID_ITEM", "Line item identity cannot be empty")
	}
	if l.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Line item quantity cannot be negative")
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Line item unit price cannot be negative")
	}
	return nil
}

// Total returns quantity multiplied by unit price
func (l *LineItem) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Clone returns an independent copy of the line item
func (l *LineItem) Clone() LineItem {
	return *l
}

func cloneItems(items []LineItem) []LineItem {
	cloned := make([]LineItem, len(items))
	copy(cloned, items)
	return cloned
}

func sumItemTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Total())
	}
	return total
}
