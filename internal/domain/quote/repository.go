package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// QuoteFilter narrows quote listings
type QuoteFilter struct {
	shared.Filter
	Status   *QuoteStatus
	ClientID *uuid.UUID
	// ExcludeDraft hides quotes never sent to the client
	ExcludeDraft bool
}

// QuoteRepository defines persistence for quotes
type QuoteRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Quote, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter QuoteFilter) ([]Quote, int64, error)
	// FindExpirable returns SENT quotes of every tenant whose validity ended before the given time
	FindExpirable(ctx context.Context, before time.Time, limit int) ([]Quote, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[QuoteStatus]int64, error)
	Save(ctx context.Context, q *Quote) error
	SaveWithLock(ctx context.Context, q *Quote) error
}
