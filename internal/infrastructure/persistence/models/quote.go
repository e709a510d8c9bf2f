package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/quote"
)

// QuoteModel is the persistence model for the Quote aggregate (devis).
type QuoteModel struct {
	TenantAggregateModel
	TotalsColumns
	Number          *string           `gorm:"type:varchar(30);index"`
	ClientID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title           string            `gorm:"type:varchar(200);not null"`
	Lines           pricing.Lines     `gorm:"type:jsonb;not null"`
	Status          quote.QuoteStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ValidUntil      time.Time         `gorm:"not null"`
	SentAt          *time.Time
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason string     `gorm:"type:text"`
	InvoiceID       *uuid.UUID `gorm:"type:uuid"`
	Notes           string     `gorm:"type:text"`
	DocumentKey     string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence model to a domain Quote.
func (m *QuoteModel) ToDomain() *quote.Quote {
	return &quote.Quote{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              derefString(m.Number),
		ClientID:            m.ClientID,
		Title:               m.Title,
		Lines:               m.Lines,
		Totals:              m.TotalsColumns.toDomain(),
		Status:              m.Status,
		ValidUntil:          m.ValidUntil,
		SentAt:              m.SentAt,
		AcceptedAt:          m.AcceptedAt,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
		InvoiceID:           m.InvoiceID,
		Notes:               m.Notes,
		DocumentKey:         m.DocumentKey,
	}
}

// QuoteModelFromDomain creates a persistence model from a domain Quote.
func QuoteModelFromDomain(q *quote.Quote) *QuoteModel {
	m := &QuoteModel{
		TotalsColumns:   totalsColumns(q.Totals),
		Number:          nullableString(q.Number),
		ClientID:        q.ClientID,
		Title:           q.Title,
		Lines:           q.Lines,
		Status:          q.Status,
		ValidUntil:      q.ValidUntil,
		SentAt:          q.SentAt,
		AcceptedAt:      q.AcceptedAt,
		RejectedAt:      q.RejectedAt,
		RejectionReason: q.RejectionReason,
		InvoiceID:       q.InvoiceID,
		Notes:           q.Notes,
		DocumentKey:     q.DocumentKey,
	}
	m.FromDomainTenantAggregateRoot(q.TenantAggregateRoot)
	return m
}

// Drafts have no number yet; NULL keeps them out of the unique index.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
