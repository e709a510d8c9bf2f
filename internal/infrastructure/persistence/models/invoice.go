package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate (facture).
type InvoiceModel struct {
	TenantAggregateModel
	TotalsColumns
	Number          *string               `gorm:"type:varchar(30);index"`
	ClientID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	QuoteID         *uuid.UUID            `gorm:"type:uuid"`
	Title           string                `gorm:"type:varchar(200);not null"`
	Lines           pricing.Lines         `gorm:"type:jsonb;not null"`
	Status          invoice.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	IssueDate       *time.Time            `gorm:"index"`
	DueDate         *time.Time            `gorm:"index"`
	PaidAmount      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Payments        invoice.Payments      `gorm:"type:jsonb"`
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelledReason string `gorm:"type:text"`
	Notes           string `gorm:"type:text"`
	DocumentKey     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	payments := m.Payments
	if payments == nil {
		payments = invoice.Payments{}
	}
	return &invoice.Invoice{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              derefString(m.Number),
		ClientID:            m.ClientID,
		QuoteID:             m.QuoteID,
		Title:               m.Title,
		Lines:               m.Lines,
		Totals:              m.TotalsColumns.toDomain(),
		Status:              m.Status,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		PaidAmount:          m.PaidAmount,
		Payments:            payments,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		CancelledReason:     m.CancelledReason,
		Notes:               m.Notes,
		DocumentKey:         m.DocumentKey,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		TotalsColumns:   totalsColumns(inv.Totals),
		Number:          nullableString(inv.Number),
		ClientID:        inv.ClientID,
		QuoteID:         inv.QuoteID,
		Title:           inv.Title,
		Lines:           inv.Lines,
		Status:          inv.Status,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		PaidAmount:      inv.PaidAmount,
		Payments:        inv.Payments,
		PaidAt:          inv.PaidAt,
		CancelledAt:     inv.CancelledAt,
		CancelledReason: inv.CancelledReason,
		Notes:           inv.Notes,
		DocumentKey:     inv.DocumentKey,
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	return m
}
