package quote

import (
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Quote
const AggregateTypeQuote = "Quote"

// Quote domain event types
const (
	EventTypeQuoteCreated  = "QuoteCreated"
	EventTypeQuoteSent     = "QuoteSent"
	EventTypeQuoteAccepted = "QuoteAccepted"
	EventTypeQuoteRejected = "QuoteRejected"
)

// QuoteCreatedEvent is published when a quote is drafted
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID       `json:"client_id"`
	TotalTTC decimal.Decimal `json:"total_ttc"`
}

func (e *QuoteCreatedEvent) EventType() string { return EventTypeQuoteCreated }

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(q *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, q.ID, q.TenantID),
		ClientID:        q.ClientID,
		TotalTTC:        q.Totals.TotalTTC,
	}
}

// QuoteSentEvent is published when a quote is sent to the client
type QuoteSentEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	ClientID uuid.UUID       `json:"client_id"`
	TotalTTC decimal.Decimal `json:"total_ttc"`
}

func (e *QuoteSentEvent) EventType() string { return EventTypeQuoteSent }

// NewQuoteSentEvent creates a new QuoteSentEvent
func NewQuoteSentEvent(q *Quote) *QuoteSentEvent {
	return &QuoteSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSent, AggregateTypeQuote, q.ID, q.TenantID),
		Number:          q.Number,
		ClientID:        q.ClientID,
		TotalTTC:        q.Totals.TotalTTC,
	}
}

// QuoteAcceptedEvent is published when the client accepts
type QuoteAcceptedEvent struct {
	shared.BaseDomainEvent
	Number   string    `json:"number"`
	ClientID uuid.UUID `json:"client_id"`
}

func (e *QuoteAcceptedEvent) EventType() string { return EventTypeQuoteAccepted }

// NewQuoteAcceptedEvent creates a new QuoteAcceptedEvent
func NewQuoteAcceptedEvent(q *Quote) *QuoteAcceptedEvent {
	return &QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteAccepted, AggregateTypeQuote, q.ID, q.TenantID),
		Number:          q.Number,
		ClientID:        q.ClientID,
	}
}

// QuoteRejectedEvent is published when the client refuses
type QuoteRejectedEvent struct {
	shared.BaseDomainEvent
	Number   string    `json:"number"`
	ClientID uuid.UUID `json:"client_id"`
	Reason   string    `json:"reason"`
}

func (e *QuoteRejectedEvent) EventType() string { return EventTypeQuoteRejected }

// NewQuoteRejectedEvent creates a new QuoteRejectedEvent
func NewQuoteRejectedEvent(q *Quote) *QuoteRejectedEvent {
	return &QuoteRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRejected, AggregateTypeQuote, q.ID, q.TenantID),
		Number:          q.Number,
		ClientID:        q.ClientID,
		Reason:          q.RejectionReason,
	}
}
