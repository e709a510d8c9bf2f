package supplier

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// SupplierRepository defines persistence for suppliers
type SupplierRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, s *Supplier) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// OrderFilter narrows supplier order listings
type OrderFilter struct {
	shared.Filter
	Status     *OrderStatus
	SupplierID *uuid.UUID
}

// SupplierOrderRepository defines persistence for supplier orders
type SupplierOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SupplierOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]SupplierOrder, int64, error)
	CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error)
	Save(ctx context.Context, o *SupplierOrder) error
}
