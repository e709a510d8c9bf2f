package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByIDForTenant finds a notification by ID within a tenant
func (r *GormNotificationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists notifications of a tenant, newest first
func (r *GormNotificationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter notification.NotificationFilter) ([]notification.Notification, int64, error) {
	f := filter.Filter.Normalize()
	query := conn(ctx, r.db).Model(&models.NotificationModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.NotificationModel
	if err := paginate(query, f, NotificationSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return notificationsToDomain(rows), total, nil
}

// FindRetryable returns failed notifications with attempts left, all tenants
func (r *GormNotificationRepository) FindRetryable(ctx context.Context, maxAttempts, limit int) ([]notification.Notification, error) {
	var rows []models.NotificationModel
	if err := conn(ctx, r.db).
		Where("status = ? AND attempts < ?", notification.StatusFailed, maxAttempts).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return notificationsToDomain(rows), nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return translateError(conn(ctx, r.db).Save(models.NotificationModelFromDomain(n)).Error)
}

func notificationsToDomain(rows []models.NotificationModel) []notification.Notification {
	out := make([]notification.Notification, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ notification.NotificationRepository = (*GormNotificationRepository)(nil)
