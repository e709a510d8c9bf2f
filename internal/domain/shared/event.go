package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is raised by an aggregate and published on the event bus once
// the transaction that produced it has committed. Every event belongs to one
// artisan so handlers can act without loading the aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// EventSource names the aggregate an event was raised on
type EventSource struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// BaseDomainEvent is embedded by the events of every domain package. The
// embedding struct adds the payload (quote number, payment amount...).
type BaseDomainEvent struct {
	ID     uuid.UUID   `json:"event_id"`
	Name   string      `json:"event_type"`
	Tenant uuid.UUID   `json:"tenant_id"`
	At     time.Time   `json:"occurred_at"`
	Source EventSource `json:"aggregate"`
}

// NewBaseDomainEvent stamps a new event for the aggregate of the given
// tenant. Tenant-less aggregates (the artisan itself) pass their own ID.
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:     uuid.New(),
		Name:   eventType,
		Tenant: tenantID,
		At:     time.Now(),
		Source: EventSource{Type: aggregateType, ID: aggregateID},
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Name }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Source.ID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Source.Type }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.Tenant }
