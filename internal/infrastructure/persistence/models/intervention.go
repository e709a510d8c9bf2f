package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// InterventionModel is the persistence model for the Intervention aggregate.
type InterventionModel struct {
	TenantAggregateModel
	ClientID       uuid.UUID                       `gorm:"type:uuid;not null;index"`
	QuoteID        *uuid.UUID                      `gorm:"type:uuid"`
	TechnicianID   *uuid.UUID                      `gorm:"type:uuid;index"`
	Title          string                          `gorm:"type:varchar(200);not null"`
	Description    string                          `gorm:"type:text"`
	Address        valueobject.Address             `gorm:"type:jsonb"`
	ScheduledStart time.Time                       `gorm:"not null;index"`
	ScheduledEnd   time.Time                       `gorm:"not null"`
	Status         intervention.InterventionStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	Report         string `gorm:"type:text"`
	ReminderSentAt *time.Time
}

// TableName returns the table name for GORM
func (InterventionModel) TableName() string {
	return "interventions"
}

// ToDomain converts the persistence model to a domain Intervention.
func (m *InterventionModel) ToDomain() *intervention.Intervention {
	return &intervention.Intervention{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ClientID:            m.ClientID,
		QuoteID:             m.QuoteID,
		TechnicianID:        m.TechnicianID,
		Title:               m.Title,
		Description:         m.Description,
		Address:             m.Address,
		ScheduledStart:      m.ScheduledStart,
		ScheduledEnd:        m.ScheduledEnd,
		Status:              m.Status,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
		CancelledAt:         m.CancelledAt,
		Report:              m.Report,
		ReminderSentAt:      m.ReminderSentAt,
	}
}

// InterventionModelFromDomain creates a persistence model from a domain Intervention.
func InterventionModelFromDomain(i *intervention.Intervention) *InterventionModel {
	m := &InterventionModel{
		ClientID:       i.ClientID,
		QuoteID:        i.QuoteID,
		TechnicianID:   i.TechnicianID,
		Title:          i.Title,
		Description:    i.Description,
		Address:        i.Address,
		ScheduledStart: i.ScheduledStart,
		ScheduledEnd:   i.ScheduledEnd,
		Status:         i.Status,
		StartedAt:      i.StartedAt,
		CompletedAt:    i.CompletedAt,
		CancelledAt:    i.CancelledAt,
		Report:         i.Report,
		ReminderSentAt: i.ReminderSentAt,
	}
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	return m
}
