package identity

import (
	"github.com/monartisan/backend/internal/domain/shared"
)

// Aggregate type constant for Artisan
const AggregateTypeArtisan = "Artisan"

// Artisan domain event types
const (
	EventTypeArtisanRegistered    = "ArtisanRegistered"
	EventTypeArtisanStatusChanged = "ArtisanStatusChanged"
)

// ArtisanRegisteredEvent is published when a new artisan signs up
type ArtisanRegisteredEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (e *ArtisanRegisteredEvent) EventType() string {
	return EventTypeArtisanRegistered
}

// NewArtisanRegisteredEvent creates a new ArtisanRegisteredEvent
func NewArtisanRegisteredEvent(a *Artisan) *ArtisanRegisteredEvent {
	return &ArtisanRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArtisanRegistered, AggregateTypeArtisan, a.ID, a.ID),
		Name:            a.Name,
		Email:           a.Email,
	}
}

// ArtisanStatusChangedEvent is published on suspension or reactivation
type ArtisanStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus ArtisanStatus `json:"old_status"`
	NewStatus ArtisanStatus `json:"new_status"`
}

func (e *ArtisanStatusChangedEvent) EventType() string {
	return EventTypeArtisanStatusChanged
}

// NewArtisanStatusChangedEvent creates a new ArtisanStatusChangedEvent
func NewArtisanStatusChangedEvent(a *Artisan, oldStatus ArtisanStatus) *ArtisanStatusChangedEvent {
	return &ArtisanStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArtisanStatusChanged, AggregateTypeArtisan, a.ID, a.ID),
		OldStatus:       oldStatus,
		NewStatus:       a.Status,
	}
}
