package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// lockedUpdate performs the optimistic-locking update shared by the
// versioned aggregates: it reads the stored version, rejects a stale
// aggregate, bumps the version and writes all columns guarded by the old
// version. build is called after the bump so the model carries the new
// version. On failure the aggregate's version is restored.
func lockedUpdate(tx *gorm.DB, table string, root *shared.TenantAggregateRoot, what string, build func() interface{}) error {
	var current []int
	if err := tx.Table(table).
		Where("tenant_id = ? AND id = ?", root.TenantID, root.ID).
		Pluck("version", &current).Error; err != nil {
		return err
	}
	if len(current) == 0 {
		return shared.ErrNotFound
	}
	if current[0] != root.Version {
		return errConcurrentModification(what)
	}

	previous := root.Version
	root.Version++
	root.UpdatedAt = time.Now()

	result := tx.Table(table).
		Where("tenant_id = ? AND id = ? AND version = ?", root.TenantID, root.ID, previous).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(build())
	if result.Error == nil && result.RowsAffected == 0 {
		result.Error = errConcurrentModification(what)
	}
	if result.Error != nil {
		root.Version = previous
		return result.Error
	}
	return nil
}

// deleteForTenant removes one row of a tenant, NOT_FOUND when absent
func deleteForTenant(tx *gorm.DB, model interface{}, tenantID, id uuid.UUID) error {
	result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
