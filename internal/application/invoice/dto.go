package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// InvoiceRequest creates or replaces a draft invoice
type InvoiceRequest struct {
	ClientID uuid.UUID           `json:"client_id" binding:"required"`
	Title    string              `json:"title" binding:"max=200"`
	Lines    []pricing.LineInput `json:"lines" binding:"required,min=1,dive"`
	Notes    string              `json:"notes" binding:"max=2000"`
}

// PaymentRequest records a payment against an issued invoice
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required,oneof=BANK_TRANSFER CARD CHEQUE CASH ONLINE"`
	Reference string          `json:"reference" binding:"max=100"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// CancelRequest carries the reason an invoice is voided
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListFilter narrows an invoice listing
type ListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT ISSUED PARTIALLY_PAID PAID OVERDUE CANCELLED"`
	ClientID *uuid.UUID `form:"-"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	OrderBy  string     `form:"order_by" binding:"omitempty,oneof=created_at number issue_date due_date"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID        uuid.UUID             `json:"id"`
	Amount    decimal.Decimal       `json:"amount"`
	Method    invoice.PaymentMethod `json:"method"`
	Reference string                `json:"reference,omitempty"`
	PaidAt    time.Time             `json:"paid_at"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	Number          string                `json:"number,omitempty"`
	ClientID        uuid.UUID             `json:"client_id"`
	QuoteID         *uuid.UUID            `json:"quote_id,omitempty"`
	Title           string                `json:"title,omitempty"`
	Lines           []pricing.LineItem    `json:"lines"`
	Totals          pricing.Totals        `json:"totals"`
	Status          invoice.InvoiceStatus `json:"status"`
	IssueDate       *time.Time            `json:"issue_date,omitempty"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	Outstanding     decimal.Decimal       `json:"outstanding"`
	Payments        []PaymentResponse     `json:"payments"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	CancelledReason string                `json:"cancelled_reason,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	HasDocument     bool                  `json:"has_document"`
	Version         int                   `json:"version"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	payments := make([]PaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		}
	}
	return InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		ClientID:        inv.ClientID,
		QuoteID:         inv.QuoteID,
		Title:           inv.Title,
		Lines:           inv.Lines,
		Totals:          inv.Totals,
		Status:          inv.Status,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		PaidAmount:      inv.PaidAmount,
		Outstanding:     inv.Outstanding(),
		Payments:        payments,
		PaidAt:          inv.PaidAt,
		CancelledAt:     inv.CancelledAt,
		CancelledReason: inv.CancelledReason,
		Notes:           inv.Notes,
		HasDocument:     inv.DocumentKey != "",
		Version:         inv.Version,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}
