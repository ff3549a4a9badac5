package models

import (
	"encoding/json"
	"time"

	"github.com/apmatch/backend/internal/domain/matching"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchRecordModel is the persistence model of one archived match attempt.
// Line results are stored as a JSON document; the archive is append-only
// and rows are never updated.
type MatchRecordModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID        string          `gorm:"type:varchar(100);not null;index"`
	Status           string          `gorm:"type:varchar(30);not null;index"`
	PONumber         string          `gorm:"type:varchar(100)"`
	ReceiptNumber    string          `gorm:"type:varchar(100)"`
	QuantityVariance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceVariance    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalVariance    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineResultsJSON  string          `gorm:"column:line_results;type:jsonb;default:'[]'"`
	AutoApproved     bool            `gorm:"not null;index"`
	RequiresReview   bool            `gorm:"not null;index"`
	ExceptionReason  string          `gorm:"type:text"`
	MatchedAt        time.Time       `gorm:"not null;index"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName specifies the table name for MatchRecordModel
func (MatchRecordModel) TableName() string {
	return "match_records"
}

// MatchRecordModelFromDomain converts a domain result to the persistence model
func MatchRecordModelFromDomain(result *matching.MatchResult) (*MatchRecordModel, error) {
	lineJSON, err := json.Marshal(result.LineResults)
	if err != nil {
		return nil, err
	}

	m := &MatchRecordModel{
		ID:               result.MatchID,
		InvoiceID:        result.InvoiceID,
		Status:           result.Status.String(),
		QuantityVariance: result.QuantityVariance,
		PriceVariance:    result.PriceVariance,
		TotalVariance:    result.TotalVariance,
		LineResultsJSON:  string(lineJSON),
		AutoApproved:     result.AutoApproved,
		RequiresReview:   result.RequiresReview,
		ExceptionReason:  result.ExceptionReason,
		MatchedAt:        result.MatchedAt,
	}
	if result.PO != nil {
		m.PONumber = result.PO.PONumber
	}
	if result.Receipt != nil {
		m.ReceiptNumber = result.Receipt.ReceiptNumber
	}
	return m, nil
}

// ToDomain converts the persistence model back to a domain result. Only the
// archived fields are recoverable: the full documents live upstream, so the
// Invoice, PO, and Receipt pointers stay nil.
func (m *MatchRecordModel) ToDomain() (*matching.MatchResult, error) {
	var lines []matching.LineMatch
	if m.LineResultsJSON != "" {
		if err := json.Unmarshal([]byte(m.LineResultsJSON), &lines); err != nil {
			return nil, err
		}
	}

	return &matching.MatchResult{
		MatchID:          m.ID,
		Status:           matching.MatchStatus(m.Status),
		InvoiceID:        m.InvoiceID,
		QuantityVariance: m.QuantityVariance,
		PriceVariance:    m.PriceVariance,
		TotalVariance:    m.TotalVariance,
		LineResults:      lines,
		AutoApproved:     m.AutoApproved,
		RequiresReview:   m.RequiresReview,
		ExceptionReason:  m.ExceptionReason,
		MatchedAt:        m.MatchedAt,
	}, nil
}
