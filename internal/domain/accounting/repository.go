package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// EntryFilter narrows journal entry listings
type EntryFilter struct {
	shared.Filter
	Journal    *Journal
	From       *time.Time
	To         *time.Time
	SourceType string
	SourceID   *uuid.UUID
}

// JournalEntryRepository defines persistence for journal entries
type JournalEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]JournalEntry, int64, error)
	// FindForPeriod returns every entry of the tenant dated within [from, to]
	FindForPeriod(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]JournalEntry, error)
	Create(ctx context.Context, e *JournalEntry) error
}
