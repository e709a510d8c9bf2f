package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/domain/supplier"
)

// SupplierModel is the persistence model for the Supplier aggregate.
type SupplierModel struct {
	TenantAggregateModel
	Name          string              `gorm:"type:varchar(200);not null"`
	ContactName   string              `gorm:"type:varchar(100)"`
	Email         string              `gorm:"type:varchar(200)"`
	Phone         string              `gorm:"type:varchar(20)"`
	Address       valueobject.Address `gorm:"type:jsonb"`
	AccountNumber string              `gorm:"type:varchar(50)"`
	Notes         string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier.
func (m *SupplierModel) ToDomain() *supplier.Supplier {
	return &supplier.Supplier{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		ContactName:         m.ContactName,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
		AccountNumber:       m.AccountNumber,
		Notes:               m.Notes,
	}
}

// SupplierModelFromDomain creates a persistence model from a domain Supplier.
func SupplierModelFromDomain(s *supplier.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:          s.Name,
		ContactName:   s.ContactName,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		AccountNumber: s.AccountNumber,
		Notes:         s.Notes,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}

// SupplierOrderModel is the persistence model for the SupplierOrder aggregate.
type SupplierOrderModel struct {
	TenantAggregateModel
	TotalsColumns
	Number         *string              `gorm:"type:varchar(30);index"`
	SupplierID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	InterventionID *uuid.UUID           `gorm:"type:uuid"`
	Lines          pricing.Lines        `gorm:"type:jsonb;not null"`
	Status         supplier.OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ExpectedAt     *time.Time
	SentAt         *time.Time
	ConfirmedAt    *time.Time
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierOrderModel) TableName() string {
	return "supplier_orders"
}

// ToDomain converts the persistence model to a domain SupplierOrder.
func (m *SupplierOrderModel) ToDomain() *supplier.SupplierOrder {
	return &supplier.SupplierOrder{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              derefString(m.Number),
		SupplierID:          m.SupplierID,
		InterventionID:      m.InterventionID,
		Lines:               m.Lines,
		Totals:              m.TotalsColumns.toDomain(),
		Status:              m.Status,
		ExpectedAt:          m.ExpectedAt,
		SentAt:              m.SentAt,
		ConfirmedAt:         m.ConfirmedAt,
		ReceivedAt:          m.ReceivedAt,
		CancelledAt:         m.CancelledAt,
		Notes:               m.Notes,
	}
}

// SupplierOrderModelFromDomain creates a persistence model from a domain SupplierOrder.
func SupplierOrderModelFromDomain(o *supplier.SupplierOrder) *SupplierOrderModel {
	m := &SupplierOrderModel{
		TotalsColumns:  totalsColumns(o.Totals),
		Number:         nullableString(o.Number),
		SupplierID:     o.SupplierID,
		InterventionID: o.InterventionID,
		Lines:          o.Lines,
		Status:         o.Status,
		ExpectedAt:     o.ExpectedAt,
		SentAt:         o.SentAt,
		ConfirmedAt:    o.ConfirmedAt,
		ReceivedAt:     o.ReceivedAt,
		CancelledAt:    o.CancelledAt,
		Notes:          o.Notes,
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	return m
}
