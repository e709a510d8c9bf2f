package supplier

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/monartisan/backend/internal/domain/shared"
)

// OrderStatus represents the status of a supplier order (commande fournisseur)
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusSent      OrderStatus = "SENT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusReceived  OrderStatus = "RECEIVED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSent, OrderStatusConfirmed, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusSent || target == OrderStatusCancelled
	case OrderStatusSent:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusReceived || target == OrderStatusCancelled
	case OrderStatusReceived, OrderStatusCancelled:
		return false
	}
	return false
}

// SupplierOrder is a purchase order for materials
type SupplierOrder struct {
	shared.TenantAggregateRoot
	Number         string
	SupplierID     uuid.UUID
	InterventionID *uuid.UUID
	Lines          pricing.Lines
	Totals         pricing.Totals
	Status         OrderStatus
	ExpectedAt     *time.Time
	SentAt         *time.Time
	ConfirmedAt    *time.Time
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	Notes          string
}

// NewSupplierOrder creates a draft order
func NewSupplierOrder(tenantID, supplierID uuid.UUID, lines []pricing.LineItem) (*SupplierOrder, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if err := pricing.Lines(lines).Validate(); err != nil {
		return nil, err
	}
	return &SupplierOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SupplierID:          supplierID,
		Lines:               append(pricing.Lines{}, lines...),
		Totals:              pricing.Compute(lines),
		Status:              OrderStatusDraft,
	}, nil
}

// Update replaces lines and planning details of a draft order
func (o *SupplierOrder) Update(lines []pricing.LineItem, expectedAt *time.Time, interventionID *uuid.UUID, notes string) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update order in %s status", o.Status))
	}
	if err := pricing.Lines(lines).Validate(); err != nil {
		return err
	}
	o.Lines = append(pricing.Lines{}, lines...)
	o.Totals = pricing.Compute(lines)
	o.ExpectedAt = expectedAt
	o.InterventionID = interventionID
	o.Notes = strings.TrimSpace(notes)
	o.UpdatedAt = time.Now()
	return nil
}

// Send marks the order as transmitted and assigns its number
func (o *SupplierOrder) Send(number string) error {
	if !o.Status.CanTransitionTo(OrderStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send order in %s status", o.Status))
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Order number is required")
	}
	now := time.Now()
	o.Number = number
	o.Status = OrderStatusSent
	o.SentAt = &now
	o.UpdatedAt = now
	return nil
}

// Confirm records the supplier's acknowledgement
func (o *SupplierOrder) Confirm(expectedAt *time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	if expectedAt != nil {
		o.ExpectedAt = expectedAt
	}
	o.UpdatedAt = now
	return nil
}

// Receive records delivery of the goods
func (o *SupplierOrder) Receive(receivedAt time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusReceived) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive order in %s status", o.Status))
	}
	o.Status = OrderStatusReceived
	o.ReceivedAt = &receivedAt
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewSupplierOrderReceivedEvent(o))
	return nil
}

// Cancel cancels an order not yet received
func (o *SupplierOrder) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}
