package matching

import (
	"time"

	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/apmatch/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the lifecycle status of a purchase order
type PurchaseOrderStatus string

const (
	POStatusOpen      PurchaseOrderStatus = "OPEN"
	POStatusPartial   PurchaseOrderStatus = "PARTIAL"
	POStatusReceived  PurchaseOrderStatus = "RECEIVED"
	POStatusClosed    PurchaseOrderStatus = "CLOSED"
	POStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case POStatusOpen, POStatusPartial, POStatusReceived, POStatusClosed, POStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsMatchable returns true when the order may still be reconciled against
// invoices. Closed and cancelled orders are excluded from amount-based
// candidate scans.
func (s PurchaseOrderStatus) IsMatchable() bool {
	return s != POStatusClosed && s != POStatusCancelled
}

// PurchaseOrder is a commitment to buy specified items from a vendor at
// agreed prices. The PO number is a business key; duplicates are permitted
// and resolve last-writer-wins in the registry index.
type PurchaseOrder struct {
	ID         string              `json:"id"`
	PONumber   string              `json:"po_number"`
	VendorID   string              `json:"vendor_id"`
	VendorName string              `json:"vendor_name"`
	OrderDate  time.Time           `json:"order_date"`
	Items      []LineItem          `json:"items"`
	Status     PurchaseOrderStatus `json:"status"`
}

// NewPurchaseOrder creates a validated purchase order in OPEN status
func NewPurchaseOrder(id, poNumber, vendorID, vendorName string, orderDate time.Time) (*PurchaseOrder, error) {
	po := &PurchaseOrder{
		ID:         id,
		PONumber:   poNumber,
		VendorID:   vendorID,
		VendorName: vendorName,
		OrderDate:  orderDate,
		Items:      make([]LineItem, 0),
		Status:     POStatusOpen,
	}
	if err := po.Validate(); err != nil {
		return nil, err
	}
	return po, nil
}

// Validate checks the data-integrity rules for a purchase order
func (p *PurchaseOrder) Validate() error {
	if p.ID == "" {
		return shared.NewDomainError("INVALID_PO", "Purchase order ID cannot be empty")
	}
	if p.PONumber == "" {
		return shared.NewDomainError("INVALID_PO_NUMBER", "Purchase order number cannot be empty")
	}
	if p.VendorID == "" {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if !p.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid purchase order status")
	}
	for i := range p.Items {
		if err := p.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddItem appends a validated line item to the order
func (p *PurchaseOrder) AddItem(itemID, itemName string, quantity, unitPrice decimal.Decimal, unit string) (*LineItem, error) {
	item, err := NewLineItem(itemID, itemName, quantity, unitPrice, unit)
	if err != nil {
		return nil, err
	}
	p.Items = append(p.Items, *item)
	return item, nil
}

// Subtotal returns the sum of all line totals
func (p *PurchaseOrder) Subtotal() decimal.Decimal {
	return sumItemTotals(p.Items)
}

// SubtotalMoney returns the subtotal as a Money value object
func (p *PurchaseOrder) SubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Subtotal())
}

// ItemCount returns the number of line items on the order
func (p *PurchaseOrder) ItemCount() int {
	return len(p.Items)
}

// Clone returns an independent deep copy of the purchase order
func (p *PurchaseOrder) Clone() *PurchaseOrder {
	cloned := *p
	cloned.Items = cloneItems(p.Items)
	return &cloned
}
