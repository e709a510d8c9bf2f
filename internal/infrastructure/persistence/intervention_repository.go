package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormInterventionRepository implements InterventionRepository using GORM
type GormInterventionRepository struct {
	db *gorm.DB
}

// NewGormInterventionRepository creates a new GormInterventionRepository
func NewGormInterventionRepository(db *gorm.DB) *GormInterventionRepository {
	return &GormInterventionRepository{db: db}
}

// FindByIDForTenant finds an intervention by ID within a tenant
func (r *GormInterventionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*intervention.Intervention, error) {
	var model models.InterventionModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists interventions; From/To select those intersecting the range
func (r *GormInterventionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter intervention.InterventionFilter) ([]intervention.Intervention, int64, error) {
	f := filter.Filter.Normalize()
	query := conn(ctx, r.db).Model(&models.InterventionModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filter.TechnicianID)
	}
	if filter.From != nil {
		query = query.Where("scheduled_end > ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_start < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.OrderBy == "" || f.OrderBy == "created_at" {
		f.OrderBy, f.OrderDir = "scheduled_start", "asc"
	}
	var rows []models.InterventionModel
	if err := paginate(query, f, InterventionSortFields, "scheduled_start").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return interventionsToDomain(rows), total, nil
}

// FindOverlapping returns the active interventions of a technician that
// intersect [start, end). A nil technician means the artisan alone.
func (r *GormInterventionRepository) FindOverlapping(ctx context.Context, tenantID uuid.UUID, technicianID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]intervention.Intervention, error) {
	query := conn(ctx, r.db).
		Where("tenant_id = ? AND status IN ?", tenantID, []intervention.InterventionStatus{
			intervention.InterventionStatusScheduled, intervention.InterventionStatusInProgress,
		}).
		Where("scheduled_start < ? AND scheduled_end > ?", end, start)
	if technicianID != nil {
		query = query.Where("technician_id = ?", *technicianID)
	} else {
		query = query.Where("technician_id IS NULL")
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []models.InterventionModel
	if err := query.Order("scheduled_start ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return interventionsToDomain(rows), nil
}

// FindReminderCandidates returns scheduled interventions starting in [from, to) without reminder
func (r *GormInterventionRepository) FindReminderCandidates(ctx context.Context, from, to time.Time, limit int) ([]intervention.Intervention, error) {
	var rows []models.InterventionModel
	if err := conn(ctx, r.db).
		Where("status = ? AND reminder_sent_at IS NULL", intervention.InterventionStatusScheduled).
		Where("scheduled_start >= ? AND scheduled_start < ?", from, to).
		Order("scheduled_start ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return interventionsToDomain(rows), nil
}

// Save creates or updates an intervention
func (r *GormInterventionRepository) Save(ctx context.Context, i *intervention.Intervention) error {
	return translateError(conn(ctx, r.db).Save(models.InterventionModelFromDomain(i)).Error)
}

func interventionsToDomain(rows []models.InterventionModel) []intervention.Intervention {
	out := make([]intervention.Intervention, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ intervention.InterventionRepository = (*GormInterventionRepository)(nil)
