package quote

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/quote"
)

// QuoteRequest creates or replaces a draft quote
type QuoteRequest struct {
	ClientID   uuid.UUID           `json:"client_id" binding:"required"`
	Title      string              `json:"title" binding:"required,max=200"`
	Lines      []pricing.LineInput `json:"lines" binding:"required,min=1,dive"`
	ValidUntil *time.Time          `json:"valid_until"`
	Notes      string              `json:"notes" binding:"max=2000"`
}

// RejectRequest carries the client's reason for refusing a quote
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListFilter narrows a quote listing
type ListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT SENT ACCEPTED REJECTED EXPIRED INVOICED CANCELLED"`
	ClientID *uuid.UUID `form:"-"`
	OrderBy  string     `form:"order_by" binding:"omitempty,oneof=created_at number valid_until"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuoteResponse is the API view of a quote
type QuoteResponse struct {
	ID              uuid.UUID          `json:"id"`
	Number          string             `json:"number,omitempty"`
	ClientID        uuid.UUID          `json:"client_id"`
	Title           string             `json:"title"`
	Lines           []pricing.LineItem `json:"lines"`
	Totals          pricing.Totals     `json:"totals"`
	Status          quote.QuoteStatus  `json:"status"`
	ValidUntil      time.Time          `json:"valid_until"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`
	AcceptedAt      *time.Time         `json:"accepted_at,omitempty"`
	RejectedAt      *time.Time         `json:"rejected_at,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	InvoiceID       *uuid.UUID         `json:"invoice_id,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	HasDocument     bool               `json:"has_document"`
	Version         int                `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ToQuoteResponse converts a domain quote
func ToQuoteResponse(q *quote.Quote) QuoteResponse {
	return QuoteResponse{
		ID:              q.ID,
		Number:          q.Number,
		ClientID:        q.ClientID,
		Title:           q.Title,
		Lines:           q.Lines,
		Totals:          q.Totals,
		Status:          q.Status,
		ValidUntil:      q.ValidUntil,
		SentAt:          q.SentAt,
		AcceptedAt:      q.AcceptedAt,
		RejectedAt:      q.RejectedAt,
		RejectionReason: q.RejectionReason,
		InvoiceID:       q.InvoiceID,
		Notes:           q.Notes,
		HasDocument:     q.DocumentKey != "",
		Version:         q.Version,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

// ConversionResponse is the result of turning an accepted quote into an invoice
type ConversionResponse struct {
	Quote     QuoteResponse `json:"quote"`
	InvoiceID uuid.UUID     `json:"invoice_id"`
}
