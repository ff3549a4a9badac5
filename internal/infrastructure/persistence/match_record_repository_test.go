package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/apmatch/backend/internal/domain/matching"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupMatchRecordTestDB creates an in-memory SQLite database for testing
func setupMatchRecordTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE match_records (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL,
			status TEXT NOT NULL,
			po_number TEXT,
			receipt_number TEXT,
			quantity_variance DECIMAL(18,4) NOT NULL,
			price_variance DECIMAL(18,4) NOT NULL,
			total_variance DECIMAL(18,4) NOT NULL,
			line_results TEXT DEFAULT '[]',
			auto_approved INTEGER NOT NULL,
			requires_review INTEGER NOT NULL,
			exception_reason TEXT,
			matched_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func archivedResult(t *testing.T, invoiceID string, status matching.MatchStatus, review bool, matchedAt time.Time) *matching.MatchResult {
	t.Helper()
	qty := decimal.NewFromInt(10)
	price := decimal.RequireFromString("5.00")
	return &matching.MatchResult{
		MatchID:          uuid.New(),
		Status:           status,
		InvoiceID:        invoiceID,
		QuantityVariance: decimal.Zero,
		PriceVariance:    decimal.Zero,
		TotalVariance:    decimal.NewFromInt(3),
		LineResults: []matching.LineMatch{
			{
				ItemID:           "widget",
				ItemName:         "Widget",
				POQuantity:       &qty,
				POPrice:          &price,
				QuantityVariance: decimal.Zero,
				PriceVariance:    decimal.Zero,
				Status:           matching.LineStatusMatched,
			},
		},
		AutoApproved:   !review,
		RequiresReview: review,
		MatchedAt:      matchedAt,
	}
}

func TestGormMatchRecordRepository_Save(t *testing.T) {
	db := setupMatchRecordTestDB(t)
	repo := NewGormMatchRecordRepository(db)
	ctx := context.Background()

	result := archivedResult(t, "inv-1", matching.MatchStatusMatched, false, time.Now().UTC())
	require.NoError(t, repo.Save(ctx, result))

	retrieved, err := repo.FindByInvoiceID(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, retrieved, 1)

	got := retrieved[0]
	assert.Equal(t, result.MatchID, got.MatchID)
	assert.Equal(t, matching.MatchStatusMatched, got.Status)
	assert.True(t, got.TotalVariance.Equal(decimal.NewFromInt(3)))
	require.Len(t, got.LineResults, 1)
	assert.Equal(t, "widget", got.LineResults[0].ItemID)
	assert.True(t, got.LineResults[0].POQuantity.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, got.Invoice, "full documents are not archived")
}

func TestGormMatchRecordRepository_SaveNil(t *testing.T) {
	db := setupMatchRecordTestDB(t)
	repo := NewGormMatchRecordRepository(db)

	assert.Error(t, repo.Save(context.Background(), nil))
}

func TestGormMatchRecordRepository_FindByInvoiceIDOrdering(t *testing.T) {
	db := setupMatchRecordTestDB(t)
	repo := NewGormMatchRecordRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	second := archivedResult(t, "inv-1", matching.MatchStatusPriceVariance, true, base.Add(time.Hour))
	first := archivedResult(t, "inv-1", matching.MatchStatusMatched, false, base)
	other := archivedResult(t, "inv-2", matching.MatchStatusMatched, false, base)

	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, other))

	results, err := repo.FindByInvoiceID(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first.MatchID, results[0].MatchID, "ascending matched_at order")
	assert.Equal(t, second.MatchID, results[1].MatchID)
}

func TestGormMatchRecordRepository_FindExceptions(t *testing.T) {
	db := setupMatchRecordTestDB(t)
	repo := NewGormMatchRecordRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Save(ctx, archivedResult(t, "inv-1", matching.MatchStatusMatched, false, now)))
	require.NoError(t, repo.Save(ctx, archivedResult(t, "inv-2", matching.MatchStatusMissingPO, true, now)))
	require.NoError(t, repo.Save(ctx, archivedResult(t, "inv-3", matching.MatchStatusUnmatched, true, now)))

	exceptions, err := repo.FindExceptions(ctx)
	require.NoError(t, err)
	assert.Len(t, exceptions, 2)
	for _, e := range exceptions {
		assert.True(t, e.RequiresReview)
	}
}

func TestGormMatchRecordRepository_Count(t *testing.T) {
	db := setupMatchRecordTestDB(t)
	repo := NewGormMatchRecordRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Save(ctx, archivedResult(t, "inv-1", matching.MatchStatusMatched, false, time.Now().UTC())))
	require.NoError(t, repo.Save(ctx, archivedResult(t, "inv-1", matching.MatchStatusMatched, false, time.Now().UTC())))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
