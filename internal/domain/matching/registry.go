package matching

import (
	"sort"
	"sync"

	"github.com/apmatch/backend/internal/domain/shared"
)

// DocumentRegistry owns the purchase orders, receipts, and invoices known
// to the matching engine, together with the secondary indices used by the
// resolvers. Documents are upserted by ID; malformed documents are
// rejected at insertion (data-integrity errors), never coerced.
//
// The registry is safe for concurrent use. Reads taken through View
// observe a consistent snapshot for the duration of the callback.
type DocumentRegistry struct {
	mu sync.RWMutex

	purchaseOrders map[string]*PurchaseOrder
	receipts       map[string]*Receipt
	invoices       map[string]*Invoice

	poByNumber   map[string]string   // po_number -> po ID, duplicates resolve last-writer-wins
	poByVendor   map[string][]string // vendor ID -> po IDs in insertion order
	receiptsByPO map[string][]string // po ID -> receipt IDs in insertion order
}

// NewDocumentRegistry creates an empty registry
func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{
		purchaseOrders: make(map[string]*PurchaseOrder),
		receipts:       make(map[string]*Receipt),
		invoices:       make(map[string]*Invoice),
		poByNumber:     make(map[string]string),
		poByVendor:     make(map[string][]string),
		receiptsByPO:   make(map[string][]string),
	}
}

// AddPurchaseOrder validates and upserts a purchase order, maintaining the
// po_number and vendor indices. Re-adding an existing ID replaces the
// document and reindexes it.
func (r *DocumentRegistry) AddPurchaseOrder(po *PurchaseOrder) error {
	if po == nil {
		return shared.NewDomainError("INVALID_PO", "Purchase order cannot be nil")
	}
	if err := po.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.purchaseOrders[po.ID]; ok {
		r.deindexPO(existing)
	}
	stored := po.Clone()
	r.purchaseOrders[stored.ID] = stored
	r.poByNumber[stored.PONumber] = stored.ID
	r.poByVendor[stored.VendorID] = append(r.poByVendor[stored.VendorID], stored.ID)
	return nil
}

// AddReceipt validates and upserts a receiving document, maintaining the
// PO linkage index when the receipt references a PO.
func (r *DocumentRegistry) AddReceipt(rc *Receipt) error {
	if rc == nil {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt cannot be nil")
	}
	if err := rc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.receipts[rc.ID]; ok && existing.POID != "" {
		r.receiptsByPO[existing.POID] = removeID(r.receiptsByPO[existing.POID], existing.ID)
	}
	stored := rc.Clone()
	r.receipts[stored.ID] = stored
	if stored.POID != "" {
		r.receiptsByPO[stored.POID] = append(r.receiptsByPO[stored.POID], stored.ID)
	}
	return nil
}

// AddInvoice validates and upserts a vendor invoice. Totals are recomputed
// from the line items at insertion; supplied totals are never trusted.
func (r *DocumentRegistry) AddInvoice(inv *Invoice) error {
	if inv == nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice cannot be nil")
	}
	if err := inv.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := inv.Clone()
	stored.RecalculateTotals()
	r.invoices[stored.ID] = stored
	return nil
}

// UpdateInvoiceStatus mutates the status of a registered invoice. The
// matching engine is the only intended caller.
func (r *DocumentRegistry) UpdateInvoiceStatus(invoiceID string, status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[invoiceID]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	return nil
}

// View runs fn under the registry read lock. Lookups performed through the
// supplied RegistryView observe one consistent snapshot; the view must not
// be retained after fn returns.
func (r *DocumentRegistry) View(fn func(RegistryView)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(RegistryView{registry: r})
}

// GetPurchaseOrder returns a copy of the purchase order with the given ID
func (r *DocumentRegistry) GetPurchaseOrder(id string) (*PurchaseOrder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	po, ok := r.purchaseOrders[id]
	if !ok {
		return nil, false
	}
	return po.Clone(), true
}

// GetReceipt returns a copy of the receipt with the given ID
func (r *DocumentRegistry) GetReceipt(id string) (*Receipt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.receipts[id]
	if !ok {
		return nil, false
	}
	return rc.Clone(), true
}

// GetInvoice returns a copy of the invoice with the given ID
func (r *DocumentRegistry) GetInvoice(id string) (*Invoice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, false
	}
	return inv.Clone(), true
}

// PendingInvoiceIDs returns the IDs of all invoices in PENDING status,
// sorted for deterministic batch ordering
func (r *DocumentRegistry) PendingInvoiceIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0)
	for id, inv := range r.invoices {
		if inv.IsPending() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// DocumentCounts reports how many documents of each type are registered
func (r *DocumentRegistry) DocumentCounts() (pos, receipts, invoices int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.purchaseOrders), len(r.receipts), len(r.invoices)
}

// deindexPO removes an order from the number and vendor indices.
// Caller must hold the write lock.
func (r *DocumentRegistry) deindexPO(po *PurchaseOrder) {
	if r.poByNumber[po.PONumber] == po.ID {
		delete(r.poByNumber, po.PONumber)
	}
	r.poByVendor[po.VendorID] = removeID(r.poByVendor[po.VendorID], po.ID)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

// RegistryView provides read access to one consistent registry snapshot.
// Returned documents are the registry's own records: callers needing to
// retain them past the View callback must Clone them.
type RegistryView struct {
	registry *DocumentRegistry
}

// Invoice looks up an invoice by ID, nil when unknown
func (v RegistryView) Invoice(id string) *Invoice {
	return v.registry.invoices[id]
}

// PurchaseOrder looks up a purchase order by ID, nil when unknown
func (v RegistryView) PurchaseOrder(id string) *PurchaseOrder {
	return v.registry.purchaseOrders[id]
}

// POByNumber resolves a purchase order by its business key, nil when the
// number is not indexed
func (v RegistryView) POByNumber(poNumber string) *PurchaseOrder {
	id, ok := v.registry.poByNumber[poNumber]
	if !ok {
		return nil
	}
	return v.registry.purchaseOrders[id]
}

// VendorPOs returns the vendor's purchase orders in insertion order
func (v RegistryView) VendorPOs(vendorID string) []*PurchaseOrder {
	ids := v.registry.poByVendor[vendorID]
	pos := make([]*PurchaseOrder, 0, len(ids))
	for _, id := range ids {
		if po, ok := v.registry.purchaseOrders[id]; ok {
			pos = append(pos, po)
		}
	}
	return pos
}

// ReceiptsForPO returns all receipts recorded against the PO in insertion
// order, supporting multiple partial deliveries
func (v RegistryView) ReceiptsForPO(poID string) []*Receipt {
	ids := v.registry.receiptsByPO[poID]
	receipts := make([]*Receipt, 0, len(ids))
	for _, id := range ids {
		if rc, ok := v.registry.receipts[id]; ok {
			receipts = append(receipts, rc)
		}
	}
	return receipts
}
