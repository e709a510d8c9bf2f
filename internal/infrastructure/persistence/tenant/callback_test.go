package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallback_FiltersContextScopedStatements(t *testing.T) {
	db := setupDB(t)
	a, b := uuid.New(), uuid.New()
	seedJobs(t, db, a, "boiler")
	seedJobs(t, db, b, "roof", "gutter")
	require.NoError(t, EnableAutoTenantFilter(db, false))

	ctx := tenantContext(a.String())

	var jobs []jobModel
	require.NoError(t, db.WithContext(ctx).Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, "boiler", jobs[0].Title)

	// a foreign tenant's rows are invisible to updates and deletes
	res := db.WithContext(ctx).Model(&jobModel{}).Where("title = ?", "roof").Update("title", "hacked")
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	res = db.WithContext(ctx).Where("title = ?", "gutter").Delete(&jobModel{})
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	// no tenant in context: cross-tenant sweep
	var total int64
	require.NoError(t, db.WithContext(context.Background()).Model(&jobModel{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}

func TestCallback_KeepsExplicitTenantFilter(t *testing.T) {
	db := setupDB(t)
	a, b := uuid.New(), uuid.New()
	seedJobs(t, db, b, "roof")
	require.NoError(t, EnableAutoTenantFilter(db, true))

	var jobs []jobModel
	err := db.WithContext(tenantContext(a.String())).Where("tenant_id = ?", b).Find(&jobs).Error
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestCallback_SkipsTablesWithoutTenantColumn(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&sequenceModel{Kind: "INVOICE", LastValue: 4}).Error)
	require.NoError(t, EnableAutoTenantFilter(db, true))

	var seq sequenceModel
	require.NoError(t, db.WithContext(tenantContext(uuid.NewString())).First(&seq, "kind = ?", "INVOICE").Error)
	assert.Equal(t, int64(4), seq.LastValue)
}

func TestCallback_RequiredTenant(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, EnableAutoTenantFilter(db, true))

	var jobs []jobModel
	err := db.WithContext(context.Background()).Find(&jobs).Error
	assert.ErrorIs(t, err, ErrTenantIDRequired)
}
