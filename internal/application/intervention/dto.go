package intervention

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// ScheduleRequest plans an intervention. An empty address falls back to the
// client's address.
type ScheduleRequest struct {
	ClientID     uuid.UUID  `json:"client_id" binding:"required"`
	QuoteID      *uuid.UUID `json:"quote_id"`
	TechnicianID *uuid.UUID `json:"technician_id"`
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description" binding:"max=4000"`
	Street       string     `json:"street" binding:"max=200"`
	Complement   string     `json:"complement" binding:"max=200"`
	PostalCode   string     `json:"postal_code" binding:"max=10"`
	City         string     `json:"city" binding:"max=100"`
	Country      string     `json:"country" binding:"omitempty,len=2"`
	Start        time.Time  `json:"start" binding:"required"`
	End          time.Time  `json:"end" binding:"required"`
}

// RescheduleRequest moves an intervention to a new slot
type RescheduleRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// CompleteRequest closes an intervention with its report
type CompleteRequest struct {
	Report string `json:"report" binding:"max=10000"`
}

// ListFilter narrows an intervention listing
type ListFilter struct {
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	Status       string     `form:"status" binding:"omitempty,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	ClientID     *uuid.UUID `form:"-"`
	TechnicianID *uuid.UUID `form:"-"`
	From         *time.Time `form:"from" time_format:"2006-01-02"`
	To           *time.Time `form:"to" time_format:"2006-01-02"`
}

// AgendaRequest is a calendar range
type AgendaRequest struct {
	From         time.Time  `form:"from" binding:"required" time_format:"2006-01-02"`
	To           time.Time  `form:"to" binding:"required" time_format:"2006-01-02"`
	TechnicianID *uuid.UUID `form:"-"`
}

// InterventionResponse is the API view of an intervention
type InterventionResponse struct {
	ID             uuid.UUID                       `json:"id"`
	ClientID       uuid.UUID                       `json:"client_id"`
	QuoteID        *uuid.UUID                      `json:"quote_id,omitempty"`
	TechnicianID   *uuid.UUID                      `json:"technician_id,omitempty"`
	Title          string                          `json:"title"`
	Description    string                          `json:"description,omitempty"`
	Address        valueobject.Address             `json:"address"`
	ScheduledStart time.Time                       `json:"scheduled_start"`
	ScheduledEnd   time.Time                       `json:"scheduled_end"`
	Status         intervention.InterventionStatus `json:"status"`
	StartedAt      *time.Time                      `json:"started_at,omitempty"`
	CompletedAt    *time.Time                      `json:"completed_at,omitempty"`
	CancelledAt    *time.Time                      `json:"cancelled_at,omitempty"`
	Report         string                          `json:"report,omitempty"`
	ReminderSentAt *time.Time                      `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
}

// ToInterventionResponse converts a domain intervention
func ToInterventionResponse(i *intervention.Intervention) InterventionResponse {
	return InterventionResponse{
		ID:             i.ID,
		ClientID:       i.ClientID,
		QuoteID:        i.QuoteID,
		TechnicianID:   i.TechnicianID,
		Title:          i.Title,
		Description:    i.Description,
		Address:        i.Address,
		ScheduledStart: i.ScheduledStart,
		ScheduledEnd:   i.ScheduledEnd,
		Status:         i.Status,
		StartedAt:      i.StartedAt,
		CompletedAt:    i.CompletedAt,
		CancelledAt:    i.CancelledAt,
		Report:         i.Report,
		ReminderSentAt: i.ReminderSentAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// AgendaDay groups the interventions starting on one calendar day
type AgendaDay struct {
	Date          string                 `json:"date"`
	Interventions []InterventionResponse `json:"interventions"`
}
