package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormImportRunRepository implements ImportRunRepository using GORM
type GormImportRunRepository struct {
	db *gorm.DB
}

// NewGormImportRunRepository creates a new GormImportRunRepository
func NewGormImportRunRepository(db *gorm.DB) *GormImportRunRepository {
	return &GormImportRunRepository{db: db}
}

// FindAllForTenant lists import runs of a tenant, latest first
func (r *GormImportRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]dataexchange.ImportRun, int64, error) {
	filter = filter.Normalize()
	query := conn(ctx, r.db).Model(&models.ImportRunModel{}).Scopes(tenant.Scope(tenantID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ImportRunModel
	if err := paginate(query, filter, ImportRunSortFields, "started_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]dataexchange.ImportRun, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates an import run
func (r *GormImportRunRepository) Save(ctx context.Context, run *dataexchange.ImportRun) error {
	return translateError(conn(ctx, r.db).Save(models.ImportRunModelFromDomain(run)).Error)
}

var _ dataexchange.ImportRunRepository = (*GormImportRunRepository)(nil)
