package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// JournalEntryModel is the persistence model for accounting entries.
// TotalDebit is denormalised for listings.
type JournalEntryModel struct {
	TenantAggregateModel
	Journal    accounting.Journal    `gorm:"type:varchar(20);not null;index"`
	Date       time.Time             `gorm:"type:date;not null;index"`
	Label      string                `gorm:"type:varchar(255);not null"`
	SourceType string                `gorm:"type:varchar(30);index:idx_entry_source,priority:1"`
	SourceID   *uuid.UUID            `gorm:"type:uuid;index:idx_entry_source,priority:2"`
	Lines      accounting.EntryLines `gorm:"type:jsonb;not null"`
	TotalDebit decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	ReversalOf *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry.
func (m *JournalEntryModel) ToDomain() *accounting.JournalEntry {
	return &accounting.JournalEntry{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Journal:             m.Journal,
		Date:                m.Date,
		Label:               m.Label,
		SourceType:          m.SourceType,
		SourceID:            m.SourceID,
		Lines:               m.Lines,
		ReversalOf:          m.ReversalOf,
	}
}

// JournalEntryModelFromDomain creates a persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e *accounting.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
		Journal:    e.Journal,
		Date:       e.Date,
		Label:      e.Label,
		SourceType: e.SourceType,
		SourceID:   e.SourceID,
		Lines:      e.Lines,
		TotalDebit: e.TotalDebit(),
		ReversalOf: e.ReversalOf,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}
