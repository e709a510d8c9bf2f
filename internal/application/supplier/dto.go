package supplier

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/domain/supplier"
)

// SupplierRequest creates or replaces a supplier
type SupplierRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	ContactName   string `json:"contact_name" binding:"max=200"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Phone         string `json:"phone" binding:"omitempty,phone"`
	Street        string `json:"street" binding:"max=200"`
	Complement    string `json:"complement" binding:"max=200"`
	PostalCode    string `json:"postal_code" binding:"max=10"`
	City          string `json:"city" binding:"max=100"`
	Country       string `json:"country" binding:"omitempty,len=2"`
	AccountNumber string `json:"account_number" binding:"max=50"`
	Notes         string `json:"notes" binding:"max=2000"`
}

// SupplierResponse is the API view of a supplier
type SupplierResponse struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	ContactName   string              `json:"contact_name,omitempty"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	Address       valueobject.Address `json:"address"`
	AccountNumber string              `json:"account_number,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToSupplierResponse converts a domain supplier
func ToSupplierResponse(s *supplier.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactName:   s.ContactName,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		AccountNumber: s.AccountNumber,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// OrderRequest creates or replaces a draft supplier order
type OrderRequest struct {
	SupplierID     uuid.UUID           `json:"supplier_id" binding:"required"`
	InterventionID *uuid.UUID          `json:"intervention_id"`
	Lines          []pricing.LineInput `json:"lines" binding:"required,min=1,dive"`
	ExpectedAt     *time.Time          `json:"expected_at"`
	Notes          string              `json:"notes" binding:"max=2000"`
}

// ConfirmRequest carries the delivery date announced by the supplier
type ConfirmRequest struct {
	ExpectedAt *time.Time `json:"expected_at"`
}

// ReceiveRequest records when goods arrived. Defaults to now.
type ReceiveRequest struct {
	ReceivedAt *time.Time `json:"received_at"`
}

// OrderListFilter narrows a supplier order listing
type OrderListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT SENT CONFIRMED RECEIVED CANCELLED"`
	SupplierID *uuid.UUID `form:"-"`
}

// OrderResponse is the API view of a supplier order
type OrderResponse struct {
	ID             uuid.UUID            `json:"id"`
	Number         string               `json:"number,omitempty"`
	SupplierID     uuid.UUID            `json:"supplier_id"`
	InterventionID *uuid.UUID           `json:"intervention_id,omitempty"`
	Lines          []pricing.LineItem   `json:"lines"`
	Totals         pricing.Totals       `json:"totals"`
	Status         supplier.OrderStatus `json:"status"`
	ExpectedAt     *time.Time           `json:"expected_at,omitempty"`
	SentAt         *time.Time           `json:"sent_at,omitempty"`
	ConfirmedAt    *time.Time           `json:"confirmed_at,omitempty"`
	ReceivedAt     *time.Time           `json:"received_at,omitempty"`
	CancelledAt    *time.Time           `json:"cancelled_at,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ToOrderResponse converts a domain supplier order
func ToOrderResponse(o *supplier.SupplierOrder) OrderResponse {
	return OrderResponse{
		ID:             o.ID,
		Number:         o.Number,
		SupplierID:     o.SupplierID,
		InterventionID: o.InterventionID,
		Lines:          o.Lines,
		Totals:         o.Totals,
		Status:         o.Status,
		ExpectedAt:     o.ExpectedAt,
		SentAt:         o.SentAt,
		ConfirmedAt:    o.ConfirmedAt,
		ReceivedAt:     o.ReceivedAt,
		CancelledAt:    o.CancelledAt,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
