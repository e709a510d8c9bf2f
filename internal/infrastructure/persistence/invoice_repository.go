package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists invoices of a tenant. From/To bound the issue date.
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoice.InvoiceFilter) ([]invoice.Invoice, int64, error) {
	f := filter.Filter.Normalize()
	query := conn(ctx, r.db).Model(&models.InvoiceModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ExcludeDraft {
		query = query.Where("status <> ?", invoice.InvoiceStatusDraft)
	}
	if filter.From != nil {
		query = query.Where("issue_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("issue_date < ?", *filter.To)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		query = query.Where(`(LOWER(number) LIKE LOWER(?) ESCAPE '\' OR LOWER(title) LIKE LOWER(?) ESCAPE '\')`, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InvoiceModel
	if err := paginate(query, f, InvoiceSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return invoicesToDomain(rows), total, nil
}

// FindOverdueCandidates returns unpaid issued invoices past due, all tenants
func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, dueBefore time.Time, limit int) ([]invoice.Invoice, error) {
	var rows []models.InvoiceModel
	if err := conn(ctx, r.db).
		Where("status IN ? AND due_date < ?",
			[]invoice.InvoiceStatus{invoice.InvoiceStatusIssued, invoice.InvoiceStatusPartiallyPaid}, dueBefore).
		Order("due_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// CountByClient counts invoices of a client
func (r *GormInvoiceRepository) CountByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize aggregates the invoices issued in [from, to) and the current
// outstanding and overdue figures of the tenant.
func (r *GormInvoiceRepository) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*invoice.Summary, error) {
	db := conn(ctx, r.db)
	active := []invoice.InvoiceStatus{
		invoice.InvoiceStatusIssued, invoice.InvoiceStatusPartiallyPaid,
		invoice.InvoiceStatusPaid, invoice.InvoiceStatusOverdue,
	}

	var period struct {
		Invoiced  decimal.NullDecimal
		Collected decimal.NullDecimal
	}
	if err := db.Model(&models.InvoiceModel{}).
		Select("SUM(total_ttc) AS invoiced, SUM(paid_amount) AS collected").
		Where("tenant_id = ? AND status IN ? AND issue_date >= ? AND issue_date < ?", tenantID, active, from, to).
		Scan(&period).Error; err != nil {
		return nil, err
	}

	var open struct {
		Outstanding  decimal.NullDecimal
		OverdueCount int64
	}
	if err := db.Model(&models.InvoiceModel{}).
		Select("SUM(total_ttc - paid_amount) AS outstanding, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS overdue_count", invoice.InvoiceStatusOverdue).
		Where("tenant_id = ? AND status IN ?", tenantID, []invoice.InvoiceStatus{
			invoice.InvoiceStatusIssued, invoice.InvoiceStatusPartiallyPaid, invoice.InvoiceStatusOverdue,
		}).
		Scan(&open).Error; err != nil {
		return nil, err
	}

	return &invoice.Summary{
		Invoiced:     orZero(period.Invoiced),
		Collected:    orZero(period.Collected),
		Outstanding:  orZero(open.Outstanding),
		OverdueCount: open.OverdueCount,
	}, nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal.Round(2)
}

// Save creates or updates an invoice without version check
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return translateError(conn(ctx, r.db).Save(models.InvoiceModelFromDomain(inv)).Error)
}

// SaveWithLock updates an invoice with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return lockedUpdate(tx, models.InvoiceModel{}.TableName(), &inv.TenantAggregateRoot, "invoice", func() interface{} {
			return models.InvoiceModelFromDomain(inv)
		})
	})
	return translateError(err)
}

// DeleteForTenant deletes a draft invoice of a tenant
func (r *GormInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, invoice.InvoiceStatusDraft).
		Delete(&models.InvoiceModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func invoicesToDomain(rows []models.InvoiceModel) []invoice.Invoice {
	out := make([]invoice.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
