package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// ReviewFilter narrows review listings
type ReviewFilter struct {
	shared.Filter
	Status *ReviewStatus
}

// ReviewRepository defines persistence for reviews
type ReviewRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Review, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ReviewFilter) ([]Review, int64, error)
	ExistsForIntervention(ctx context.Context, tenantID, clientID uuid.UUID, interventionID *uuid.UUID) (bool, error)
	// RatingHistogram counts published reviews per rating
	RatingHistogram(ctx context.Context, tenantID uuid.UUID) (map[int]int64, error)
	Save(ctx context.Context, r *Review) error
}
