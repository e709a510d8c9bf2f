package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByIDForTenant finds a quote by ID within a tenant
func (r *GormQuoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*quote.Quote, error) {
	var model models.QuoteModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists quotes of a tenant
func (r *GormQuoteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter quote.QuoteFilter) ([]quote.Quote, int64, error) {
	f := filter.Filter.Normalize()
	query := conn(ctx, r.db).Model(&models.QuoteModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ExcludeDraft {
		query = query.Where("status <> ?", quote.QuoteStatusDraft)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		query = query.Where(`(LOWER(number) LIKE LOWER(?) ESCAPE '\' OR LOWER(title) LIKE LOWER(?) ESCAPE '\')`, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.QuoteModel
	if err := paginate(query, f, QuoteSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return quotesToDomain(rows), total, nil
}

// FindExpirable returns sent quotes past their validity, all tenants
func (r *GormQuoteRepository) FindExpirable(ctx context.Context, before time.Time, limit int) ([]quote.Quote, error) {
	var rows []models.QuoteModel
	if err := conn(ctx, r.db).
		Where("status = ? AND valid_until < ?", quote.QuoteStatusSent, before).
		Order("valid_until ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return quotesToDomain(rows), nil
}

// CountByStatus counts the quotes of a tenant per status
func (r *GormQuoteRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[quote.QuoteStatus]int64, error) {
	var rows []struct {
		Status quote.QuoteStatus
		Count  int64
	}
	if err := conn(ctx, r.db).Model(&models.QuoteModel{}).
		Select("status, COUNT(*) AS count").
		Scopes(tenant.Scope(tenantID)).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[quote.QuoteStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// Save creates or updates a quote without version check
func (r *GormQuoteRepository) Save(ctx context.Context, q *quote.Quote) error {
	return translateError(conn(ctx, r.db).Save(models.QuoteModelFromDomain(q)).Error)
}

// SaveWithLock updates a quote with optimistic locking
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, q *quote.Quote) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return lockedUpdate(tx, models.QuoteModel{}.TableName(), &q.TenantAggregateRoot, "quote", func() interface{} {
			return models.QuoteModelFromDomain(q)
		})
	})
	return translateError(err)
}

func quotesToDomain(rows []models.QuoteModel) []quote.Quote {
	out := make([]quote.Quote, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ quote.QuoteRepository = (*GormQuoteRepository)(nil)
