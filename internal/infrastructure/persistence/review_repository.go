package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByIDForTenant finds a review by ID within a tenant
func (r *GormReviewRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists reviews of a tenant
func (r *GormReviewRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter review.ReviewFilter) ([]review.Review, int64, error) {
	f := filter.Filter.Normalize()
	query := conn(ctx, r.db).Model(&models.ReviewModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if v, ok := f.Filters["client_id"]; ok {
		query = query.Where("client_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ReviewModel
	if err := paginate(query, f, ReviewSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]review.Review, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// ExistsForIntervention checks the one-review-per-intervention rule.
// Without intervention, a client may leave a single general review.
func (r *GormReviewRepository) ExistsForIntervention(ctx context.Context, tenantID, clientID uuid.UUID, interventionID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.ReviewModel{}).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID)
	if interventionID != nil {
		query = query.Where("intervention_id = ?", *interventionID)
	} else {
		query = query.Where("intervention_id IS NULL")
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RatingHistogram counts published reviews per rating
func (r *GormReviewRepository) RatingHistogram(ctx context.Context, tenantID uuid.UUID) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	if err := conn(ctx, r.db).Model(&models.ReviewModel{}).
		Select("rating, COUNT(*) AS count").
		Where("tenant_id = ? AND status = ?", tenantID, review.ReviewStatusPublished).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Rating] = row.Count
	}
	return out, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return translateError(conn(ctx, r.db).Save(models.ReviewModelFromDomain(rv)).Error)
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)
