package intervention

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// InterventionStatus represents the status of a scheduled job
type InterventionStatus string

const (
	InterventionStatusScheduled  InterventionStatus = "SCHEDULED"
	InterventionStatusInProgress InterventionStatus = "IN_PROGRESS"
	InterventionStatusCompleted  InterventionStatus = "COMPLETED"
	InterventionStatusCancelled  InterventionStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s InterventionStatus) IsValid() bool {
	switch s {
	case InterventionStatusScheduled, InterventionStatusInProgress, InterventionStatusCompleted, InterventionStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s InterventionStatus) CanTransitionTo(target InterventionStatus) bool {
	switch s {
	case InterventionStatusScheduled:
		return target == InterventionStatusScheduled || target == InterventionStatusInProgress || target == InterventionStatusCancelled
	case InterventionStatusInProgress:
		return target == InterventionStatusCompleted
	}
	return false
}

// BlocksAgenda reports whether the slot is still occupied
func (s InterventionStatus) BlocksAgenda() bool {
	return s == InterventionStatusScheduled || s == InterventionStatusInProgress
}

// MaxDuration bounds a single intervention slot
const MaxDuration = 14 * 24 * time.Hour

// Intervention is an on-site job planned for a client
type Intervention struct {
	shared.TenantAggregateRoot
	ClientID       uuid.UUID
	QuoteID        *uuid.UUID
	TechnicianID   *uuid.UUID
	Title          string
	Description    string
	Address        valueobject.Address
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Status         InterventionStatus
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	Report         string
	ReminderSentAt *time.Time
}

// NewIntervention schedules a new intervention
func NewIntervention(tenantID, clientID uuid.UUID, title string, start, end time.Time) (*Intervention, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Intervention title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Intervention title cannot exceed 200 characters")
	}
	if err := validateSlot(start, end); err != nil {
		return nil, err
	}

	i := &Intervention{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Title:               title,
		ScheduledStart:      start,
		ScheduledEnd:        end,
		Status:              InterventionStatusScheduled,
	}
	i.AddDomainEvent(NewInterventionScheduledEvent(i))
	return i, nil
}

func validateSlot(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return shared.NewDomainError("INVALID_SLOT", "Start and end are required")
	}
	if !end.After(start) {
		return shared.NewDomainError("INVALID_SLOT", "End must be after start")
	}
	if end.Sub(start) > MaxDuration {
		return shared.NewDomainError("INVALID_SLOT", "Intervention cannot exceed 14 days")
	}
	return nil
}

// SetDetails sets the optional description, address, quote and technician
func (i *Intervention) SetDetails(description string, address valueobject.Address, quoteID, technicianID *uuid.UUID) {
	i.Description = strings.TrimSpace(description)
	i.Address = address
	i.QuoteID = quoteID
	i.TechnicianID = technicianID
	i.UpdatedAt = time.Now()
}

// Overlaps reports whether two slots intersect. Back-to-back slots do not.
func (i *Intervention) Overlaps(start, end time.Time) bool {
	return i.ScheduledStart.Before(end) && start.Before(i.ScheduledEnd)
}

// Reschedule moves a scheduled intervention to a new slot
func (i *Intervention) Reschedule(start, end time.Time) error {
	if !i.Status.CanTransitionTo(InterventionStatusScheduled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reschedule intervention in %s status", i.Status))
	}
	if err := validateSlot(start, end); err != nil {
		return err
	}
	i.ScheduledStart = start
	i.ScheduledEnd = end
	i.ReminderSentAt = nil
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewInterventionRescheduledEvent(i))
	return nil
}

// Start marks the technician as on site
func (i *Intervention) Start() error {
	if !i.Status.CanTransitionTo(InterventionStatusInProgress) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start intervention in %s status", i.Status))
	}
	now := time.Now()
	i.Status = InterventionStatusInProgress
	i.StartedAt = &now
	i.UpdatedAt = now
	return nil
}

// Complete closes the intervention with a work report
func (i *Intervention) Complete(report string) error {
	if !i.Status.CanTransitionTo(InterventionStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete intervention in %s status", i.Status))
	}
	now := time.Now()
	i.Status = InterventionStatusCompleted
	i.CompletedAt = &now
	i.Report = strings.TrimSpace(report)
	i.UpdatedAt = now
	i.AddDomainEvent(NewInterventionCompletedEvent(i))
	return nil
}

// Cancel cancels a scheduled intervention
func (i *Intervention) Cancel() error {
	if !i.Status.CanTransitionTo(InterventionStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel intervention in %s status", i.Status))
	}
	now := time.Now()
	i.Status = InterventionStatusCancelled
	i.CancelledAt = &now
	i.UpdatedAt = now
	return nil
}

// NeedsReminder reports whether a reminder is due within the lead time
func (i *Intervention) NeedsReminder(now time.Time, lead time.Duration) bool {
	if i.Status != InterventionStatusScheduled || i.ReminderSentAt != nil {
		return false
	}
	return i.ScheduledStart.After(now) && !i.ScheduledStart.After(now.Add(lead))
}

// MarkReminderSent records that the client was reminded
func (i *Intervention) MarkReminderSent(at time.Time) {
	i.ReminderSentAt = &at
	i.UpdatedAt = at
}
