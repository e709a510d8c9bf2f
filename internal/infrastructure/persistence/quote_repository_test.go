package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormQuoteRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds quote within tenant", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormQuoteRepository(db)

		quoteID, tenantID := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "number", "title", "status", "total_ttc", "lines", "valid_until"}).
			AddRow(quoteID, tenantID, 3, "DEV-2026-00042", "Toiture", "SENT", "1160.50", "[]", time.Now())

		mock.ExpectQuery(`SELECT \* FROM "quotes" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, quoteID, 1).
			WillReturnRows(rows)

		q, err := repo.FindByIDForTenant(context.Background(), tenantID, quoteID)
		require.NoError(t, err)
		assert.Equal(t, "DEV-2026-00042", q.Number)
		assert.Equal(t, quote.QuoteStatusSent, q.Status)
		assert.Equal(t, 3, q.Version)
		assert.Equal(t, "1160.5", q.Totals.TotalTTC.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps record not found", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormQuoteRepository(db)

		quoteID, tenantID := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "quotes" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, quoteID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		q, err := repo.FindByIDForTenant(context.Background(), tenantID, quoteID)
		assert.Nil(t, q)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQuoteRepository_CountByStatus(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormQuoteRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "quotes" WHERE tenant_id = \$1 GROUP BY "status"`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("SENT", 4).
			AddRow("ACCEPTED", 2))

	counts, err := repo.CountByStatus(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts[quote.QuoteStatusSent])
	assert.Equal(t, int64(2), counts[quote.QuoteStatusAccepted])
	assert.Equal(t, int64(0), counts[quote.QuoteStatusDraft])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormQuoteRepository_SaveWithLock_Conflict(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormQuoteRepository(db)

	q, err := quote.NewQuote(uuid.New(), uuid.New(), "Isolation", newTestLines(t, "500"), nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "version" FROM "quotes" WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(q.TenantID, q.ID).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectRollback()

	err = repo.SaveWithLock(context.Background(), q)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "CONCURRENT_MODIFICATION", de.Code)
	assert.Equal(t, 1, q.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
