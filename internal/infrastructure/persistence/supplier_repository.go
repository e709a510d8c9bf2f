package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/supplier"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByIDForTenant finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*supplier.Supplier, error) {
	var model models.SupplierModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists suppliers of a tenant
func (r *GormSupplierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]supplier.Supplier, int64, error) {
	filter = filter.Normalize()
	query := conn(ctx, r.db).Model(&models.SupplierModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(email) LIKE LOWER(?) ESCAPE '\')`, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.OrderBy == "" || filter.OrderBy == "created_at" {
		filter.OrderBy, filter.OrderDir = "name", "asc"
	}
	var rows []models.SupplierModel
	if err := paginate(query, filter, SupplierSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]supplier.Supplier, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, s *supplier.Supplier) error {
	return translateError(conn(ctx, r.db).Save(models.SupplierModelFromDomain(s)).Error)
}

// DeleteForTenant deletes a supplier of a tenant
func (r *GormSupplierRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(conn(ctx, r.db), &models.SupplierModel{}, tenantID, id)
}

// GormSupplierOrderRepository implements SupplierOrderRepository using GORM
type GormSupplierOrderRepository struct {
	db *gorm.DB
}

// NewGormSupplierOrderRepository creates a new GormSupplierOrderRepository
func NewGormSupplierOrderRepository(db *gorm.DB) *GormSupplierOrderRepository {
	return &GormSupplierOrderRepository{db: db}
}

// FindByIDForTenant finds a supplier order by ID within a tenant
func (r *GormSupplierOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*supplier.SupplierOrder, error) {
	var model models.SupplierOrderModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists supplier orders of a tenant
func (r *GormSupplierOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter supplier.OrderFilter) ([]supplier.SupplierOrder, int64, error) {
	f := filter.Filter.Normalize()
	query := conn(ctx, r.db).Model(&models.SupplierOrderModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.SupplierOrderModel
	if err := paginate(query, f, SupplierOrderSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]supplier.SupplierOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// CountBySupplier counts the orders placed with a supplier
func (r *GormSupplierOrderRepository) CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.SupplierOrderModel{}).
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a supplier order
func (r *GormSupplierOrderRepository) Save(ctx context.Context, o *supplier.SupplierOrder) error {
	return translateError(conn(ctx, r.db).Save(models.SupplierOrderModelFromDomain(o)).Error)
}

var (
	_ supplier.SupplierRepository      = (*GormSupplierRepository)(nil)
	_ supplier.SupplierOrderRepository = (*GormSupplierOrderRepository)(nil)
)
