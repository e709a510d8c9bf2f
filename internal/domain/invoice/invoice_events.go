package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Invoice
const AggregateTypeInvoice = "Invoice"

// Invoice domain event types
const (
	EventTypeInvoiceCreated   = "InvoiceCreated"
	EventTypeInvoiceIssued    = "InvoiceIssued"
	EventTypePaymentReceived  = "PaymentReceived"
	EventTypeInvoiceCancelled = "InvoiceCancelled"
	EventTypeInvoiceOverdue   = "InvoiceOverdue"
)

// InvoiceCreatedEvent is published when a draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID  `json:"client_id"`
	QuoteID  *uuid.UUID `json:"quote_id,omitempty"`
}

func (e *InvoiceCreatedEvent) EventType() string { return EventTypeInvoiceCreated }

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID, i.TenantID),
		ClientID:        i.ClientID,
		QuoteID:         i.QuoteID,
	}
}

// InvoiceIssuedEvent carries the amounts needed to post the sales entry
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	Number    string                 `json:"number"`
	ClientID  uuid.UUID              `json:"client_id"`
	IssueDate time.Time              `json:"issue_date"`
	DueDate   time.Time              `json:"due_date"`
	TotalHT   decimal.Decimal        `json:"total_ht"`
	TotalVAT  decimal.Decimal        `json:"total_vat"`
	TotalTTC  decimal.Decimal        `json:"total_ttc"`
	Breakdown []pricing.VATBreakdown `json:"vat_breakdown"`
}

func (e *InvoiceIssuedEvent) EventType() string { return EventTypeInvoiceIssued }

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(i *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, i.ID, i.TenantID),
		Number:          i.Number,
		ClientID:        i.ClientID,
		IssueDate:       *i.IssueDate,
		DueDate:         *i.DueDate,
		TotalHT:         i.Totals.TotalHT,
		TotalVAT:        i.Totals.TotalVAT,
		TotalTTC:        i.Totals.TotalTTC,
		Breakdown:       i.Totals.Breakdown,
	}
}

// PaymentReceivedEvent is published for every payment recorded
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	ClientID    uuid.UUID       `json:"client_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	Reference   string          `json:"reference"`
	PaidAt      time.Time       `json:"paid_at"`
	Outstanding decimal.Decimal `json:"outstanding"`
	FullyPaid   bool            `json:"fully_paid"`
}

func (e *PaymentReceivedEvent) EventType() string { return EventTypePaymentReceived }

// NewPaymentReceivedEvent creates a new PaymentReceivedEvent
func NewPaymentReceivedEvent(i *Invoice, p Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReceived, AggregateTypeInvoice, i.ID, i.TenantID),
		Number:          i.Number,
		ClientID:        i.ClientID,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Method:          p.Method,
		Reference:       p.Reference,
		PaidAt:          p.PaidAt,
		Outstanding:     i.Outstanding(),
		FullyPaid:       i.Status == InvoiceStatusPaid,
	}
}

// InvoiceCancelledEvent carries the amounts to reverse
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	Number    string                 `json:"number"`
	Reason    string                 `json:"reason"`
	TotalHT   decimal.Decimal        `json:"total_ht"`
	TotalVAT  decimal.Decimal        `json:"total_vat"`
	TotalTTC  decimal.Decimal        `json:"total_ttc"`
	Breakdown []pricing.VATBreakdown `json:"vat_breakdown"`
}

func (e *InvoiceCancelledEvent) EventType() string { return EventTypeInvoiceCancelled }

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(i *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, i.ID, i.TenantID),
		Number:          i.Number,
		Reason:          i.CancelledReason,
		TotalHT:         i.Totals.TotalHT,
		TotalVAT:        i.Totals.TotalVAT,
		TotalTTC:        i.Totals.TotalTTC,
		Breakdown:       i.Totals.Breakdown,
	}
}

// InvoiceOverdueEvent is published when the due date passes unpaid
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	ClientID    uuid.UUID       `json:"client_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
	DueDate     time.Time       `json:"due_date"`
}

func (e *InvoiceOverdueEvent) EventType() string { return EventTypeInvoiceOverdue }

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(i *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceOverdue, AggregateTypeInvoice, i.ID, i.TenantID),
		Number:          i.Number,
		ClientID:        i.ClientID,
		Outstanding:     i.Outstanding(),
		DueDate:         *i.DueDate,
	}
}
