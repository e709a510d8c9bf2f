package dataexchange

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// ImportRunRepository defines persistence for import runs
type ImportRunRepository interface {
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ImportRun, int64, error)
	Save(ctx context.Context, run *ImportRun) error
}
