package persistence

import (
	"context"

	"github.com/apmatch/backend/internal/domain/matching"
	"github.com/apmatch/backend/internal/domain/shared"
	"github.com/apmatch/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMatchRecordRepository implements matching.MatchRecordRepository
// using GORM. The table is append-only; Save never updates existing rows.
type GormMatchRecordRepository struct {
	db *gorm.DB
}

// NewGormMatchRecordRepository creates a new GormMatchRecordRepository
func NewGormMatchRecordRepository(db *gorm.DB) *GormMatchRecordRepository {
	return &GormMatchRecordRepository{db: db}
}

// Save persists one match result
func (r *GormMatchRecordRepository) Save(ctx context.Context, result *matching.MatchResult) error {
	if result == nil {
		return shared.NewDomainError("INVALID_RESULT", "Match result cannot be nil")
	}
	model, err := models.MatchRecordModelFromDomain(result)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByInvoiceID returns the archived attempts for an invoice in
// ascending MatchedAt order
func (r *GormMatchRecordRepository) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*matching.MatchResult, error) {
	var rows []models.MatchRecordModel
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("matched_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainResults(rows)
}

// FindExceptions returns archived attempts that required review
func (r *GormMatchRecordRepository) FindExceptions(ctx context.Context) ([]*matching.MatchResult, error) {
	var rows []models.MatchRecordModel
	err := r.db.WithContext(ctx).
		Where("requires_review = ?", true).
		Order("matched_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainResults(rows)
}

// Count returns the number of archived attempts
func (r *GormMatchRecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MatchRecordModel{}).Count(&count).Error
	return count, err
}

func toDomainResults(rows []models.MatchRecordModel) ([]*matching.MatchResult, error) {
	results := make([]*matching.MatchResult, 0, len(rows))
	for i := range rows {
		result, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
