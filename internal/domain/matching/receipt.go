package matching

import (
	"time"

	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Receipt records goods physically received against a purchase order.
// POID is a weak reference: a PO may have zero, one, or many receipts
// for partial deliveries.
type Receipt struct {
	ID            string     `json:"id"`
	ReceiptNumber string     `json:"receipt_number"`
	VendorID      string     `json:"vendor_id"`
	VendorName    string     `json:"vendor_name"`
	ReceivedDate  time.Time  `json:"received_date"`
	POID          string     `json:"po_id,omitempty"`
	Items         []LineItem `json:"items"`
}

// NewReceipt creates a validated receiving document
func NewReceipt(id, receiptNumber, vendorID, vendorName string, receivedDate time.Time, poID string) (*Receipt, error) {
	rc := &Receipt{
		ID:            id,
		ReceiptNumber: receiptNumber,
		VendorID:      vendorID,
		VendorName:    vendorName,
		ReceivedDate:  receivedDate,
		POID:          poID,
		Items:         make([]LineItem, 0),
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return rc, nil
}

// Validate checks the data-integrity rules for a receipt
func (r *Receipt) Validate() error {
	if r.ID == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt ID cannot be empty")
	}
	if r.ReceiptNumber == "" {
		return shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if r.VendorID == "" {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddItem appends a validated line item to the receipt
func (r *Receipt) AddItem(itemID, itemName string, quantity, unitPrice decimal.Decimal, unit string) (*LineItem, error) {
	item, err := NewLineItem(itemID, itemName, quantity, unitPrice, unit)
	if err != nil {
		return nil, err
	}
	r.Items = append(r.Items, *item)
	return item, nil
}

// TotalReceived returns the total value of goods on the receipt
func (r *Receipt) TotalReceived() decimal.Decimal {
	return sumItemTotals(r.Items)
}

// Clone returns an independent deep copy of the receipt
func (r *Receipt) Clone() *Receipt {
	cloned := *r
	cloned.Items = cloneItems(r.Items)
	return &cloned
}
