package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// ClientRepository defines persistence for clients. Every method is scoped to
// a tenant; a client of another tenant is reported as not found.
type ClientRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, int64, error)
	FindByEmailForTenant(ctx context.Context, tenantID uuid.UUID, email string) (*Client, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Client, error)
	// FindByPortalToken is the only lookup not scoped by tenant: the token identifies both
	FindByPortalToken(ctx context.Context, token string) (*Client, error)
	Save(ctx context.Context, client *Client) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
