package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type jobModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title    string
}

func (jobModel) TableName() string { return "jobs" }

type sequenceModel struct {
	Kind      string `gorm:"primaryKey"`
	LastValue int64
}

func (sequenceModel) TableName() string { return "sequences" }

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&jobModel{}, &sequenceModel{}))
	return db
}

func tenantContext(tenantID string) context.Context {
	ctx, _ := logger.WithTenantID(context.Background(), zap.NewNop(), tenantID)
	return ctx
}

func seedJobs(t *testing.T, db *gorm.DB, tenantID uuid.UUID, titles ...string) {
	for _, title := range titles {
		require.NoError(t, db.Create(&jobModel{ID: uuid.New(), TenantID: tenantID, Title: title}).Error)
	}
}

func TestTenantDB_WithContext(t *testing.T) {
	db := setupDB(t)
	a, b := uuid.New(), uuid.New()
	seedJobs(t, db, a, "boiler", "sink")
	seedJobs(t, db, b, "roof")

	tdb := NewTenantDB(db)

	var jobs []jobModel
	require.NoError(t, tdb.WithContext(tenantContext(a.String())).Find(&jobs).Error)
	assert.Len(t, jobs, 2)

	jobs = nil
	require.NoError(t, tdb.ForTenant(context.Background(), b).Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, "roof", jobs[0].Title)

	var total int64
	require.NoError(t, tdb.Unscoped().Model(&jobModel{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}

func TestTenantDB_MissingOrInvalidTenant(t *testing.T) {
	tdb := NewTenantDB(setupDB(t))

	var jobs []jobModel
	err := tdb.WithContext(context.Background()).Find(&jobs).Error
	assert.ErrorIs(t, err, ErrTenantIDRequired)

	err = tdb.WithContext(tenantContext("not-a-uuid")).Find(&jobs).Error
	assert.ErrorIs(t, err, ErrInvalidTenantID)

	err = tdb.ForTenant(context.Background(), uuid.Nil).Find(&jobs).Error
	assert.ErrorIs(t, err, ErrTenantIDRequired)
}

func TestFromContext(t *testing.T) {
	id := uuid.New()
	got, err := FromContext(tenantContext(id.String()))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
