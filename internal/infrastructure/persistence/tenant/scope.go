// Package tenant scopes GORM statements to one artisan.
//
// Repositories filter by tenant explicitly. The helpers here cover the
// remaining read models (dashboard, exports) and register a callback that
// adds the filter to any context-scoped statement on a tenant-owned table.
//
//	db := tenant.NewTenantDB(gormDB)
//	db.WithContext(ctx).Model(&models.InvoiceModel{}).Count(&n) // WHERE tenant_id = ...
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

const Column = "tenant_id"

var (
	ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")
	ErrInvalidTenantID  = errors.New("invalid tenant_id format")
)

// Scope restricts a statement to one tenant
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(Column+" = ?", tenantID)
	}
}

// TenantDB wraps GORM DB with tenant scoping resolved from the context
type TenantDB struct {
	db *gorm.DB
}

func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db}
}

// WithContext returns a DB scoped to the tenant carried by ctx. A missing or
// malformed tenant yields a DB whose next operation fails.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	db := t.db.WithContext(ctx)
	tenantID, err := FromContext(ctx)
	if err != nil {
		_ = db.AddError(err)
		return db
	}
	return db.Scopes(Scope(tenantID))
}

// ForTenant scopes to an explicit tenant
func (t *TenantDB) ForTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	db := t.db.WithContext(ctx)
	if tenantID == uuid.Nil {
		_ = db.AddError(ErrTenantIDRequired)
		return db
	}
	return db.Scopes(Scope(tenantID))
}

// Unscoped returns the raw DB for cross-tenant sweeps (scheduler jobs).
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}

// FromContext parses the tenant id stored by the auth middleware
func FromContext(ctx context.Context) (uuid.UUID, error) {
	raw := logger.GetTenantID(ctx)
	if raw == "" {
		return uuid.Nil, ErrTenantIDRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidTenantID
	}
	return id, nil
}
