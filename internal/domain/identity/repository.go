package identity

import (
	"context"

	"github.com/google/uuid"
)

// ArtisanRepository defines persistence for artisan accounts
type ArtisanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Artisan, error)
	Save(ctx context.Context, artisan *Artisan) error
	ExistsBySIRET(ctx context.Context, siret string) (bool, error)
	// NextDocumentNumber increments and returns the per-year sequence for a document kind
	NextDocumentNumber(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, year int) (int, error)
}

// UserRepository defines persistence for users.
// Email lookups are global since login happens before the tenant is known.
type UserRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}
