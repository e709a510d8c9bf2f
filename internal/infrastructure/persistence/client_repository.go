package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForTenant finds a client by ID within a tenant
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists clients with accent-insensitive search on the search key
func (r *GormClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]client.Client, int64, error) {
	filter = filter.Normalize()
	query := conn(ctx, r.db).Model(&models.ClientModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Search != "" {
		query = query.Where(`search_key LIKE ? ESCAPE '\'`, likePattern(valueobject.SearchKey(filter.Search)))
	}
	if v, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", v)
	}
	if v, ok := filter.Filters["portal_enabled"]; ok {
		query = query.Where("portal_enabled = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClientModel
	if err := paginate(query, filter, ClientSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return clientsToDomain(rows), total, nil
}

// FindByEmailForTenant finds a client by email within a tenant
func (r *GormClientRepository) FindByEmailForTenant(ctx context.Context, tenantID uuid.UUID, email string) (*client.Client, error) {
	var model models.ClientModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several clients of a tenant at once
func (r *GormClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]client.Client, error) {
	if len(ids) == 0 {
		return []client.Client{}, nil
	}
	var rows []models.ClientModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return clientsToDomain(rows), nil
}

// FindByPortalToken resolves an enabled portal token
func (r *GormClientRepository) FindByPortalToken(ctx context.Context, token string) (*client.Client, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.ClientModel
	if err := conn(ctx, r.db).
		Where("portal_token = ? AND portal_enabled = ?", token, true).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	return translateError(conn(ctx, r.db).Save(models.ClientModelFromDomain(c)).Error)
}

// DeleteForTenant deletes a client of a tenant
func (r *GormClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(conn(ctx, r.db), &models.ClientModel{}, tenantID, id)
}

func clientsToDomain(rows []models.ClientModel) []client.Client {
	out := make([]client.Client, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ client.ClientRepository = (*GormClientRepository)(nil)
