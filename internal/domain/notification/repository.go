package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	shared.Filter
	Channel    *Channel
	UnreadOnly bool
}

// NotificationRepository defines persistence for notifications
type NotificationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Notification, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter NotificationFilter) ([]Notification, int64, error)
	// FindRetryable returns FAILED notifications of every tenant with attempts left
	FindRetryable(ctx context.Context, maxAttempts, limit int) ([]Notification, error)
	Save(ctx context.Context, n *Notification) error
}

// Sender delivers a notification on one channel
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, n *Notification) error
}
