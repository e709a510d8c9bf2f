package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status   *InvoiceStatus
	ClientID *uuid.UUID
	From     *time.Time
	To       *time.Time
	// ExcludeDraft hides invoices not issued yet
	ExcludeDraft bool
}

// Summary aggregates invoice amounts for the dashboard
type Summary struct {
	Invoiced     decimal.Decimal
	Collected    decimal.Decimal
	Outstanding  decimal.Decimal
	OverdueCount int64
}

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)
	// FindOverdueCandidates returns ISSUED or PARTIALLY_PAID invoices of every tenant due before the given time
	FindOverdueCandidates(ctx context.Context, dueBefore time.Time, limit int) ([]Invoice, error)
	CountByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error)
	Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*Summary, error)
	Save(ctx context.Context, inv *Invoice) error
	SaveWithLock(ctx context.Context, inv *Invoice) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
