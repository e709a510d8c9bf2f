package intervention

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// Aggregate type constant for Intervention
const AggregateTypeIntervention = "Intervention"

// Intervention domain event types
const (
	EventTypeInterventionScheduled   = "InterventionScheduled"
	EventTypeInterventionRescheduled = "InterventionRescheduled"
	EventTypeInterventionCompleted   = "InterventionCompleted"
)

// InterventionScheduledEvent is published when a job is planned
type InterventionScheduledEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (e *InterventionScheduledEvent) EventType() string { return EventTypeInterventionScheduled }

// NewInterventionScheduledEvent creates a new InterventionScheduledEvent
func NewInterventionScheduledEvent(i *Intervention) *InterventionScheduledEvent {
	return &InterventionScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInterventionScheduled, AggregateTypeIntervention, i.ID, i.TenantID),
		ClientID:        i.ClientID,
		Title:           i.Title,
		Start:           i.ScheduledStart,
		End:             i.ScheduledEnd,
	}
}

// InterventionRescheduledEvent is published when the slot moves
type InterventionRescheduledEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (e *InterventionRescheduledEvent) EventType() string { return EventTypeInterventionRescheduled }

// NewInterventionRescheduledEvent creates a new InterventionRescheduledEvent
func NewInterventionRescheduledEvent(i *Intervention) *InterventionRescheduledEvent {
	return &InterventionRescheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInterventionRescheduled, AggregateTypeIntervention, i.ID, i.TenantID),
		ClientID:        i.ClientID,
		Title:           i.Title,
		Start:           i.ScheduledStart,
		End:             i.ScheduledEnd,
	}
}

// InterventionCompletedEvent is published when the job is done
type InterventionCompletedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Title    string    `json:"title"`
}

func (e *InterventionCompletedEvent) EventType() string { return EventTypeInterventionCompleted }

// NewInterventionCompletedEvent creates a new InterventionCompletedEvent
func NewInterventionCompletedEvent(i *Intervention) *InterventionCompletedEvent {
	return &InterventionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInterventionCompleted, AggregateTypeIntervention, i.ID, i.TenantID),
		ClientID:        i.ClientID,
		Title:           i.Title,
	}
}
