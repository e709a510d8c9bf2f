package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice (facture)
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusIssued
	case InvoiceStatusIssued:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid ||
			target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid || target == InvoiceStatusOverdue
	case InvoiceStatusOverdue:
		return target == InvoiceStatusOverdue || target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false
	}
	return false
}

// AcceptsPayment reports whether payments can be recorded in this status
func (s InvoiceStatus) AcceptsPayment() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

// Invoice is a bill sent to a client. The legal number is assigned at issue
// so numbers are sequential without gaps among issued invoices.
type Invoice struct {
	shared.TenantAggregateRoot
	Number          string
	ClientID        uuid.UUID
	QuoteID         *uuid.UUID
	Title           string
	Lines           pricing.Lines
	Totals          pricing.Totals
	Status          InvoiceStatus
	IssueDate       *time.Time
	DueDate         *time.Time
	PaidAmount      decimal.Decimal
	Payments        Payments
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelledReason string
	Notes           string
	DocumentKey     string
}

// NewInvoice creates a new draft invoice
func NewInvoice(tenantID, clientID uuid.UUID, title string, lines []pricing.LineItem) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Status:              InvoiceStatusDraft,
		PaidAmount:          decimal.Zero,
		Payments:            Payments{},
	}
	if err := inv.setContent(title, lines); err != nil {
		return nil, err
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// NewInvoiceFromQuote creates a draft invoice carrying over an accepted quote's lines
func NewInvoiceFromQuote(tenantID, clientID, quoteID uuid.UUID, title string, lines []pricing.LineItem) (*Invoice, error) {
	inv, err := NewInvoice(tenantID, clientID, title, lines)
	if err != nil {
		return nil, err
	}
	inv.QuoteID = &quoteID
	for _, e := range inv.GetDomainEvents() {
		if created, ok := e.(*InvoiceCreatedEvent); ok {
			created.QuoteID = &quoteID
		}
	}
	return inv, nil
}

func (i *Invoice) setContent(title string, lines []pricing.LineItem) error {
	title = strings.TrimSpace(title)
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Invoice title cannot exceed 200 characters")
	}
	if err := pricing.Lines(lines).Validate(); err != nil {
		return err
	}
	i.Title = title
	i.Lines = append(pricing.Lines{}, lines...)
	i.Totals = pricing.Compute(lines)
	return nil
}

// Update replaces the content of a draft invoice
func (i *Invoice) Update(title string, lines []pricing.LineItem, notes string) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update invoice in %s status", i.Status))
	}
	if err := i.setContent(title, lines); err != nil {
		return err
	}
	i.Notes = strings.TrimSpace(notes)
	i.UpdatedAt = time.Now()
	return nil
}

// Issue finalizes the invoice: assigns its number and due date
func (i *Invoice) Issue(number string, issueDate time.Time, paymentTermsDays int) error {
	if !i.Status.CanTransitionTo(InvoiceStatusIssued) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue invoice in %s status", i.Status))
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number is required")
	}
	if !i.Totals.TotalTTC.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}
	if paymentTermsDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}

	issued := issueDate
	due := issueDate.AddDate(0, 0, paymentTermsDays)
	i.Number = number
	i.Status = InvoiceStatusIssued
	i.IssueDate = &issued
	i.DueDate = &due
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewInvoiceIssuedEvent(i))
	return nil
}

// Outstanding returns the amount still due
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.Totals.TotalTTC.Sub(i.PaidAmount)
}

// RecordPayment applies a payment. Overpayment is rejected.
func (i *Invoice) RecordPayment(amount decimal.Decimal, method PaymentMethod, reference string, paidAt time.Time) (*Payment, error) {
	if !i.Status.AcceptsPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on invoice in %s status", i.Status))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !amount.Equal(pricing.Round2(amount)) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot have more than 2 decimals")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if amount.GreaterThan(i.Outstanding()) {
		return nil, shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment amount %s exceeds outstanding amount %s", amount.StringFixed(2), i.Outstanding().StringFixed(2)))
	}
	reference = strings.TrimSpace(reference)
	if reference != "" && i.HasPaymentReference(reference) {
		return nil, shared.NewDomainError("DUPLICATE_PAYMENT", "A payment with this reference was already recorded")
	}

	payment := Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Method:    method,
		Reference: reference,
		PaidAt:    paidAt,
	}
	i.Payments = append(i.Payments, payment)
	i.PaidAmount = i.Payments.Total()

	switch {
	case i.Outstanding().IsZero():
		i.Status = InvoiceStatusPaid
		i.PaidAt = &paidAt
	case i.Status == InvoiceStatusOverdue:
		// stays overdue until fully paid
	default:
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewPaymentReceivedEvent(i, payment))
	return &payment, nil
}

// HasPaymentReference reports whether a payment with the reference exists
func (i *Invoice) HasPaymentReference(reference string) bool {
	for _, p := range i.Payments {
		if p.Reference != "" && p.Reference == reference {
			return true
		}
	}
	return false
}

// Cancel voids an issued invoice that received no payment
func (i *Invoice) Cancel(reason string) error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", i.Status))
	}
	if i.PaidAmount.IsPositive() {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel an invoice with recorded payments")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	now := time.Now()
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.CancelledReason = reason
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoiceCancelledEvent(i))
	return nil
}

// IsOverdue reports whether the due date has passed with an amount still due
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil || !i.Outstanding().IsPositive() {
		return false
	}
	if i.Status != InvoiceStatusIssued && i.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	return now.After(endOfDay(*i.DueDate))
}

// MarkOverdue flags an unpaid invoice past its due date
func (i *Invoice) MarkOverdue(now time.Time) error {
	if !i.IsOverdue(now) {
		return shared.NewDomainError("NOT_OVERDUE", "Invoice is not overdue")
	}
	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoiceOverdueEvent(i))
	return nil
}

// CanDelete returns true for drafts, the only invoices that may be removed
func (i *Invoice) CanDelete() bool {
	return i.Status == InvoiceStatusDraft
}

// SetDocument records the storage key of the rendered PDF
func (i *Invoice) SetDocument(key string) {
	i.DocumentKey = key
	i.UpdatedAt = time.Now()
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
