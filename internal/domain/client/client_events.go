package client

import (
	"github.com/monartisan/backend/internal/domain/shared"
)

// Aggregate type constant for Client
const AggregateTypeClient = "Client"

// Client domain event types
const (
	EventTypeClientCreated = "ClientCreated"
	EventTypeClientUpdated = "ClientUpdated"
)

// ClientCreatedEvent is published when a client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (e *ClientCreatedEvent) EventType() string {
	return EventTypeClientCreated
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID, c.TenantID),
		Name:            c.DisplayName(),
		Email:           c.Email,
	}
}

// ClientUpdatedEvent is published when client details change
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

func (e *ClientUpdatedEvent) EventType() string {
	return EventTypeClientUpdated
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(c *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, c.ID, c.TenantID),
		Name:            c.DisplayName(),
	}
}
