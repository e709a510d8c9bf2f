package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormArtisanRepository implements ArtisanRepository using GORM
type GormArtisanRepository struct {
	db *gorm.DB
}

// NewGormArtisanRepository creates a new GormArtisanRepository
func NewGormArtisanRepository(db *gorm.DB) *GormArtisanRepository {
	return &GormArtisanRepository{db: db}
}

// FindByID finds an artisan by ID
func (r *GormArtisanRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Artisan, error) {
	var model models.ArtisanModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates an artisan
func (r *GormArtisanRepository) Save(ctx context.Context, artisan *identity.Artisan) error {
	return translateError(conn(ctx, r.db).Save(models.ArtisanModelFromDomain(artisan)).Error)
}

// ExistsBySIRET checks whether a SIRET is already registered
func (r *GormArtisanRepository) ExistsBySIRET(ctx context.Context, siret string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.ArtisanModel{}).
		Where("siret = ?", siret).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextDocumentNumber atomically increments the yearly sequence of a document
// kind and returns the new value. The upsert is a single statement, so
// concurrent callers always get distinct numbers.
func (r *GormArtisanRepository) NextDocumentNumber(ctx context.Context, tenantID uuid.UUID, kind identity.DocumentKind, year int) (int, error) {
	var next int
	err := conn(ctx, r.db).Raw(
		`INSERT INTO document_sequences (tenant_id, kind, year, last_value, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (tenant_id, kind, year)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = excluded.updated_at
		RETURNING last_value`,
		tenantID, string(kind), year, time.Now(),
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

var _ identity.ArtisanRepository = (*GormArtisanRepository)(nil)
