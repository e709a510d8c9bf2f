package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
)

// QuoteStatus represents the status of a quote (devis)
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
	QuoteStatusInvoiced  QuoteStatus = "INVOICED"
	QuoteStatusCancelled QuoteStatus = "CANCELLED"
)

// DefaultValidityDays is the validity of a quote when none is given
const DefaultValidityDays = 30

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected,
		QuoteStatusExpired, QuoteStatusInvoiced, QuoteStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent || target == QuoteStatusCancelled
	case QuoteStatusSent:
		return target == QuoteStatusAccepted || target == QuoteStatusRejected ||
			target == QuoteStatusExpired || target == QuoteStatusCancelled
	case QuoteStatusAccepted:
		return target == QuoteStatusInvoiced
	case QuoteStatusRejected, QuoteStatusExpired, QuoteStatusInvoiced, QuoteStatusCancelled:
		return false
	}
	return false
}

// IsTerminal returns true when no further transition is possible
func (s QuoteStatus) IsTerminal() bool {
	switch s {
	case QuoteStatusRejected, QuoteStatusExpired, QuoteStatusInvoiced, QuoteStatusCancelled:
		return true
	}
	return false
}

// Quote is an estimate sent to a client. Numbers are assigned when the
// quote is first sent so drafts never consume a number.
type Quote struct {
	shared.TenantAggregateRoot
	Number          string
	ClientID        uuid.UUID
	Title           string
	Lines           pricing.Lines
	Totals          pricing.Totals
	Status          QuoteStatus
	ValidUntil      time.Time
	SentAt          *time.Time
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason string
	InvoiceID       *uuid.UUID
	Notes           string
	DocumentKey     string
}

// NewQuote creates a new draft quote
func NewQuote(tenantID, clientID uuid.UUID, title string, lines []pricing.LineItem, validUntil *time.Time) (*Quote, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}

	q := &Quote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Status:              QuoteStatusDraft,
	}
	if err := q.setContent(title, lines, validUntil); err != nil {
		return nil, err
	}
	q.AddDomainEvent(NewQuoteCreatedEvent(q))
	return q, nil
}

func (q *Quote) setContent(title string, lines []pricing.LineItem, validUntil *time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Quote title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Quote title cannot exceed 200 characters")
	}
	if err := pricing.Lines(lines).Validate(); err != nil {
		return err
	}
	until := time.Now().AddDate(0, 0, DefaultValidityDays)
	if validUntil != nil {
		if validUntil.Before(time.Now().Truncate(24 * time.Hour)) {
			return shared.NewDomainError("INVALID_VALIDITY", "Validity date cannot be in the past")
		}
		until = *validUntil
	}

	q.Title = title
	q.Lines = append(pricing.Lines{}, lines...)
	q.Totals = pricing.Compute(lines)
	q.ValidUntil = until
	return nil
}

// Update replaces title, lines and validity. Only drafts are editable.
func (q *Quote) Update(title string, lines []pricing.LineItem, validUntil *time.Time, notes string) error {
	if q.Status != QuoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update quote in %s status", q.Status))
	}
	if err := q.setContent(title, lines, validUntil); err != nil {
		return err
	}
	q.Notes = strings.TrimSpace(notes)
	q.UpdatedAt = time.Now()
	return nil
}

// Send marks the quote as sent to the client and assigns its number
func (q *Quote) Send(number string) error {
	if !q.Status.CanTransitionTo(QuoteStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quote in %s status", q.Status))
	}
	if q.Number == "" {
		if number == "" {
			return shared.NewDomainError("INVALID_NUMBER", "Quote number is required")
		}
		q.Number = number
	}
	now := time.Now()
	q.Status = QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteSentEvent(q))
	return nil
}

// Accept records the client's agreement
func (q *Quote) Accept() error {
	if !q.Status.CanTransitionTo(QuoteStatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept quote in %s status", q.Status))
	}
	if q.IsPastValidity(time.Now()) {
		return shared.NewDomainError("QUOTE_EXPIRED", "Quote validity date has passed")
	}
	now := time.Now()
	q.Status = QuoteStatusAccepted
	q.AcceptedAt = &now
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteAcceptedEvent(q))
	return nil
}

// Reject records the client's refusal
func (q *Quote) Reject(reason string) error {
	if !q.Status.CanTransitionTo(QuoteStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject quote in %s status", q.Status))
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason cannot exceed 500 characters")
	}
	now := time.Now()
	q.Status = QuoteStatusRejected
	q.RejectedAt = &now
	q.RejectionReason = reason
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteRejectedEvent(q))
	return nil
}

// Expire marks a sent quote whose validity has passed
func (q *Quote) Expire(now time.Time) error {
	if !q.Status.CanTransitionTo(QuoteStatusExpired) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire quote in %s status", q.Status))
	}
	if !q.IsPastValidity(now) {
		return shared.NewDomainError("QUOTE_STILL_VALID", "Quote is still within its validity period")
	}
	q.Status = QuoteStatusExpired
	q.UpdatedAt = now
	return nil
}

// Cancel withdraws a draft or sent quote
func (q *Quote) Cancel() error {
	if !q.Status.CanTransitionTo(QuoteStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel quote in %s status", q.Status))
	}
	q.Status = QuoteStatusCancelled
	q.UpdatedAt = time.Now()
	return nil
}

// MarkInvoiced links the accepted quote to the invoice created from it
func (q *Quote) MarkInvoiced(invoiceID uuid.UUID) error {
	if !q.Status.CanTransitionTo(QuoteStatusInvoiced) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot invoice quote in %s status", q.Status))
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	q.Status = QuoteStatusInvoiced
	q.InvoiceID = &invoiceID
	q.UpdatedAt = time.Now()
	return nil
}

// Duplicate returns a new draft with the same client and lines
func (q *Quote) Duplicate() (*Quote, error) {
	dup, err := NewQuote(q.TenantID, q.ClientID, q.Title, q.Lines, nil)
	if err != nil {
		return nil, err
	}
	dup.Notes = q.Notes
	return dup, nil
}

// SetDocument records the storage key of the rendered PDF
func (q *Quote) SetDocument(key string) {
	q.DocumentKey = key
	q.UpdatedAt = time.Now()
}

// IsPastValidity reports whether the validity date is over at the given time
func (q *Quote) IsPastValidity(now time.Time) bool {
	return now.After(endOfDay(q.ValidUntil))
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
