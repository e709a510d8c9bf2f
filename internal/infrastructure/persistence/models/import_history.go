package models

import (
	"time"

	"github.com/monartisan/backend/internal/domain/dataexchange"
)

// ImportRunModel is the persistence model for client import runs.
type ImportRunModel struct {
	TenantAggregateModel
	FileName    string                 `gorm:"type:varchar(255);not null"`
	Format      dataexchange.Format    `gorm:"type:varchar(10);not null"`
	Mode        dataexchange.Mode      `gorm:"type:varchar(10);not null"`
	Status      dataexchange.RunStatus `gorm:"type:varchar(20);not null;index"`
	Total       int                    `gorm:"not null;default:0"`
	Imported    int                    `gorm:"not null;default:0"`
	Updated     int                    `gorm:"not null;default:0"`
	Skipped     int                    `gorm:"not null;default:0"`
	Errors      dataexchange.RowErrors `gorm:"type:jsonb"`
	StartedAt   time.Time              `gorm:"not null;index"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (ImportRunModel) TableName() string {
	return "import_runs"
}

// ToDomain converts the persistence model to a domain ImportRun.
func (m *ImportRunModel) ToDomain() *dataexchange.ImportRun {
	return &dataexchange.ImportRun{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		FileName:            m.FileName,
		Format:              m.Format,
		Mode:                m.Mode,
		Status:              m.Status,
		Total:               m.Total,
		Imported:            m.Imported,
		Updated:             m.Updated,
		Skipped:             m.Skipped,
		Errors:              m.Errors,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
	}
}

// ImportRunModelFromDomain creates a persistence model from a domain ImportRun.
func ImportRunModelFromDomain(r *dataexchange.ImportRun) *ImportRunModel {
	m := &ImportRunModel{
		FileName:    r.FileName,
		Format:      r.Format,
		Mode:        r.Mode,
		Status:      r.Status,
		Total:       r.Total,
		Imported:    r.Imported,
		Updated:     r.Updated,
		Skipped:     r.Skipped,
		Errors:      r.Errors,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
