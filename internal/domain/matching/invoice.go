package matching

import (
	"time"

	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/apmatch/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of a vendor invoice
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "PENDING"
	InvoiceStatusMatched  InvoiceStatus = "MATCHED"
	InvoiceStatusApproved InvoiceStatus = "APPROVED"
	InvoiceStatusPaid     InvoiceStatus = "PAID"
	InvoiceStatusDisputed InvoiceStatus = "DISPUTED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusMatched, InvoiceStatusApproved,
		InvoiceStatusPaid, InvoiceStatusDisputed:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice is a vendor's bill requesting payment, reconciled against a PO
// (price) and receipts (quantity). Totals are always recomputed from line
// items and never trusted as given.
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	VendorID      string        `json:"vendor_id"`
	VendorName    string        `json:"vendor_name"`
	InvoiceDate   time.Time     `json:"invoice_date"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	PONumber      string        `json:"po_number,omitempty"` // reference hint, may be empty
	Items         []LineItem    `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus `json:"status"`
}

// NewInvoice creates a validated invoice in PENDING status
func NewInvoice(id, invoiceNumber, vendorID, vendorName string, invoiceDate time.Time) (*Invoice, error) {
	inv := &Invoice{
		ID:            id,
		InvoiceNumber: invoiceNumber,
		VendorID:      vendorID,
		VendorName:    vendorName,
		InvoiceDate:   invoiceDate,
		Items:         make([]LineItem, 0),
		Subtotal:      decimal.Zero,
		Tax:           decimal.Zero,
		Shipping:      decimal.Zero,
		Total:         decimal.Zero,
		Status:        InvoiceStatusPending,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Validate checks the data-integrity rules for an invoice
func (i *Invoice) Validate() error {
	if i.ID == "" {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if i.InvoiceNumber == "" {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if i.VendorID == "" {
		return shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if !i.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
	if i.Tax.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Invoice tax cannot be negative")
	}
	if i.Shipping.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Invoice shipping cannot be negative")
	}
	for idx := range i.Items {
		if err := i.Items[idx].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddItem appends a validated line item and recalculates totals
func (i *Invoice) AddItem(itemID, itemName string, quantity, unitPrice decimal.Decimal, unit string) (*LineItem, error) {
	item, err := NewLineItem(itemID, itemName, quantity, unitPrice, unit)
	if err != nil {
		return nil, err
	}
	i.Items = append(i.Items, *item)
	i.RecalculateTotals()
	return item, nil
}

// SetTax sets the tax amount and recalculates totals
func (i *Invoice) SetTax(tax decimal.Decimal) error {
	if tax.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Invoice tax cannot be negative")
	}
	i.Tax = tax
	i.RecalculateTotals()
	return nil
}

// SetShipping sets the shipping amount and recalculates totals
func (i *Invoice) SetShipping(shipping decimal.Decimal) error {
	if shipping.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Invoice shipping cannot be negative")
	}
	i.Shipping = shipping
	i.RecalculateTotals()
	return nil
}

// RecalculateTotals recomputes subtotal and total from the line items.
// The operation is idempotent: recalculating twice from unchanged lines
// yields identical values.
func (i *Invoice) RecalculateTotals() {
	i.Subtotal = sumItemTotals(i.Items)
	i.Total = i.Subtotal.Add(i.Tax).Add(i.Shipping)
}

// TotalMoney returns the invoice total as a Money value object
func (i *Invoice) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Total)
}

// IsPending returns true if the invoice has not yet been matched or approved
func (i *Invoice) IsPending() bool {
	return i.Status == InvoiceStatusPending
}

// Clone returns an independent deep copy of the invoice
func (i *Invoice) Clone() *Invoice {
	cloned := *i
	cloned.Items = cloneItems(i.Items)
	return &cloned
}
