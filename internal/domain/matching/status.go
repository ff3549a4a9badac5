package matching

// MatchStatus classifies the outcome of a three-way match attempt
type MatchStatus string

const (
	MatchStatusMatched          MatchStatus = "MATCHED"
	MatchStatusPartial          MatchStatus = "PARTIAL"
	MatchStatusQuantityVariance MatchStatus = "QUANTITY_VARIANCE"
	MatchStatusPriceVariance    MatchStatus = "PRICE_VARIANCE"
	MatchStatusMissingPO        MatchStatus = "MISSING_PO"
	MatchStatusMissingReceipt   MatchStatus = "MISSING_RECEIPT"
	MatchStatusMissingInvoice   MatchStatus = "MISSING_INVOICE"
	MatchStatusUnmatched        MatchStatus = "UNMATCHED"
)

// IsValid checks if the status is a valid MatchStatus
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusMatched, MatchStatusPartial, MatchStatusQuantityVariance,
		MatchStatusPriceVariance, MatchStatusMissingPO, MatchStatusMissingReceipt,
		MatchStatusMissingInvoice, MatchStatusUnmatched:
		return true
	}
	return false
}

// String returns the string representation of MatchStatus
func (s MatchStatus) String() string {
	return string(s)
}

// IsMissingDocument returns true when the status signals an absent document
func (s MatchStatus) IsMissingDocument() bool {
	return s == MatchStatusMissingPO || s == MatchStatusMissingReceipt || s == MatchStatusMissingInvoice
}

// LineMatchStatus classifies a single line item across the three documents
type LineMatchStatus string

const (
	LineStatusMatched          LineMatchStatus = "MATCHED"
	LineStatusQuantityVariance LineMatchStatus = "QUANTITY_VARIANCE"
	LineStatusPriceVariance    LineMatchStatus = "PRICE_VARIANCE"
	LineStatusMissingPO        LineMatchStatus = "MISSING_PO"
	LineStatusMissingReceipt   LineMatchStatus = "MISSING_RECEIPT"
)

// IsValid checks if the status is a valid LineMatchStatus
func (s LineMatchStatus) IsValid() bool {
	switch s {
	case LineStatusMatched, LineStatusQuantityVariance, LineStatusPriceVariance,
		LineStatusMissingPO, LineStatusMissingReceipt:
		return true
	}
	return false
}

// String returns the string representation of LineMatchStatus
func (s LineMatchStatus) String() string {
	return string(s)
}

// IsMissing returns true when the line is absent from the PO or receipts
func (s LineMatchStatus) IsMissing() bool {
	return s == LineStatusMissingPO || s == LineStatusMissingReceipt
}
