package intervention

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// InterventionFilter narrows intervention listings
type InterventionFilter struct {
	shared.Filter
	Status       *InterventionStatus
	ClientID     *uuid.UUID
	TechnicianID *uuid.UUID
	From         *time.Time
	To           *time.Time
}

// InterventionRepository defines persistence for interventions
type InterventionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Intervention, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InterventionFilter) ([]Intervention, int64, error)
	// FindOverlapping returns active interventions of a technician intersecting [start, end)
	FindOverlapping(ctx context.Context, tenantID uuid.UUID, technicianID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Intervention, error)
	// FindReminderCandidates returns SCHEDULED interventions of every tenant starting in [from, to) without reminder
	FindReminderCandidates(ctx context.Context, from, to time.Time, limit int) ([]Intervention, error)
	Save(ctx context.Context, i *Intervention) error
}
