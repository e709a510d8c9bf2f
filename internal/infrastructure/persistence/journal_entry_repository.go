package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements JournalEntryRepository using GORM.
// Entries are append-only: there is no update or delete.
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByIDForTenant finds an entry by ID within a tenant
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists entries of a tenant
func (r *GormJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter accounting.EntryFilter) ([]accounting.JournalEntry, int64, error) {
	f := filter.Filter.Normalize()
	query := r.scopePeriod(conn(ctx, r.db).Model(&models.JournalEntryModel{}).Scopes(tenant.Scope(tenantID)), filter.From, filter.To)
	if filter.Journal != nil {
		query = query.Where("journal = ?", *filter.Journal)
	}
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", filter.SourceType)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.OrderBy == "" || f.OrderBy == "created_at" {
		f.OrderBy = "date"
	}
	var rows []models.JournalEntryModel
	if err := paginate(query, f, JournalEntrySortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return entriesToDomain(rows), total, nil
}

// FindForPeriod returns every entry of a tenant dated within [from, to]
func (r *GormJournalEntryRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]accounting.JournalEntry, error) {
	var rows []models.JournalEntryModel
	if err := r.scopePeriod(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)), from, to).
		Order("date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

// Create appends an entry
func (r *GormJournalEntryRepository) Create(ctx context.Context, e *accounting.JournalEntry) error {
	return translateError(conn(ctx, r.db).Create(models.JournalEntryModelFromDomain(e)).Error)
}

func (r *GormJournalEntryRepository) scopePeriod(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	return query
}

func entriesToDomain(rows []models.JournalEntryModel) []accounting.JournalEntry {
	out := make([]accounting.JournalEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ accounting.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
