package identity

import (
	"github.com/monartisan/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated  = "UserCreated"
	EventTypeUserDisabled = "UserDisabled"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.TenantID),
		Email:           u.Email,
		Role:            u.Role,
	}
}

// UserDisabledEvent is published when a user is disabled
type UserDisabledEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

func (e *UserDisabledEvent) EventType() string {
	return EventTypeUserDisabled
}

// NewUserDisabledEvent creates a new UserDisabledEvent
func NewUserDisabledEvent(u *User) *UserDisabledEvent {
	return &UserDisabledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDisabled, AggregateTypeUser, u.ID, u.TenantID),
		Email:           u.Email,
	}
}
