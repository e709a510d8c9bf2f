package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const retryBatchSize = 100

// ErrNoSender is recorded when no sender is configured for a channel
var ErrNoSender = errors.New("no sender configured for channel")

// Service records notifications and dispatches them through channel senders
type Service struct {
	notificationRepo notification.NotificationRepository
	clientRepo       client.ClientRepository
	artisanRepo      identity.ArtisanRepository
	senders          map[notification.Channel]notification.Sender
	portalBaseURL    string
	logger           *zap.Logger
	now              func() time.Time
}

// NewService creates a new notification service. IN_APP notifications need
// no sender; they are delivered by being stored.
func NewService(
	notificationRepo notification.NotificationRepository,
	clientRepo client.ClientRepository,
	artisanRepo identity.ArtisanRepository,
	senders []notification.Sender,
	portalBaseURL string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	byChannel := make(map[notification.Channel]notification.Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Service{
		notificationRepo: notificationRepo,
		clientRepo:       clientRepo,
		artisanRepo:      artisanRepo,
		senders:          byChannel,
		portalBaseURL:    strings.TrimRight(portalBaseURL, "/"),
		logger:           logger,
		now:              time.Now,
	}
}

// Send records a notification and attempts delivery. A failed delivery is
// kept as FAILED for RetryFailed and is not an error of the call.
func (s *Service) Send(ctx context.Context, tenantID uuid.UUID, req SendRequest) (*NotificationResponse, error) {
	n, err := notification.NewNotification(tenantID, notification.Channel(req.Channel), req.Recipient, req.Subject, req.Body)
	if err != nil {
		return nil, err
	}
	if req.RelatedID != nil && req.RelatedType != "" {
		n.RelatesTo(req.RelatedType, *req.RelatedID)
	}
	if err := s.dispatch(ctx, n); err != nil {
		return nil, err
	}
	response := ToNotificationResponse(n)
	return &response, nil
}

// List returns a page of the tenant's notifications
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[NotificationResponse], error) {
	domainFilter := notification.NotificationFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		}.Normalize(),
		UnreadOnly: filter.UnreadOnly,
	}
	if filter.Channel != "" {
		channel := notification.Channel(filter.Channel)
		domainFilter.Channel = &channel
	}
	notifications, total, err := s.notificationRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		items[i] = ToNotificationResponse(&notifications[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// MarkRead flags an in-app notification as read
func (s *Service) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.notificationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := n.MarkRead(); err != nil {
		return nil, err
	}
	if err := s.notificationRepo.Save(ctx, n); err != nil {
		return nil, err
	}
	response := ToNotificationResponse(n)
	return &response, nil
}

// RetryFailed attempts delivery again for failed notifications with attempts
// left. It returns how many were delivered.
func (s *Service) RetryFailed(ctx context.Context) (int, error) {
	candidates, err := s.notificationRepo.FindRetryable(ctx, notification.MaxAttempts, retryBatchSize)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		n := &candidates[i]
		if !n.CanRetry() {
			continue
		}
		if err := s.dispatch(ctx, n); err != nil {
			s.logger.Error("Failed to save retried notification",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err))
			continue
		}
		if n.Status == notification.StatusSent {
			delivered++
		}
	}
	if len(candidates) > 0 {
		s.logger.Info("Retried failed notifications",
			zap.Int("candidates", len(candidates)),
			zap.Int("delivered", delivered))
	}
	return delivered, nil
}

// RemindIntervention tells the client about an intervention starting soon
func (s *Service) RemindIntervention(ctx context.Context, i *intervention.Intervention, c *client.Client) error {
	artisan, err := s.artisanRepo.FindByID(ctx, i.TenantID)
	if err != nil {
		return err
	}
	channel, recipient, ok := clientChannel(c)
	if !ok {
		return shared.NewDomainError("NO_CONTACT", "Client has neither email nor phone")
	}
	msg := interventionReminder(artisan, i, channel)
	return s.notify(ctx, i.TenantID, channel, recipient, msg, intervention.AggregateTypeIntervention, i.ID)
}

// notify creates and dispatches a notification about a business record
func (s *Service) notify(ctx context.Context, tenantID uuid.UUID, channel notification.Channel, recipient string, msg message, relatedType string, relatedID uuid.UUID) error {
	n, err := notification.NewNotification(tenantID, channel, recipient, msg.subject, msg.body)
	if err != nil {
		return err
	}
	n.RelatesTo(relatedType, relatedID)
	return s.dispatch(ctx, n)
}

// dispatch attempts delivery and persists the outcome. Only persistence
// errors are returned.
func (s *Service) dispatch(ctx context.Context, n *notification.Notification) error {
	if n.Channel == notification.ChannelInApp {
		n.MarkSent(s.now())
		return s.notificationRepo.Save(ctx, n)
	}

	sender, ok := s.senders[n.Channel]
	if !ok {
		n.MarkFailed(fmt.Errorf("%w %s", ErrNoSender, n.Channel))
	} else if err := sender.Send(ctx, n); err != nil {
		n.MarkFailed(err)
		s.logger.Warn("Notification delivery failed",
			zap.String("tenant_id", n.TenantID.String()),
			zap.String("notification_id", n.ID.String()),
			zap.String("channel", string(n.Channel)),
			zap.Int("attempts", n.Attempts),
			zap.Error(err))
	} else {
		n.MarkSent(s.now())
	}
	return s.notificationRepo.Save(ctx, n)
}

// portalLink is the client's portal URL, empty when the portal is off
func (s *Service) portalLink(c *client.Client) string {
	if !c.PortalEnabled || c.PortalToken == "" || s.portalBaseURL == "" {
		return ""
	}
	return s.portalBaseURL + "/portal/" + c.PortalToken
}

// clientChannel prefers email and falls back to SMS
func clientChannel(c *client.Client) (notification.Channel, string, bool) {
	if c.Email != "" {
		return notification.ChannelEmail, c.Email, true
	}
	if c.Phone != "" {
		return notification.ChannelSMS, c.Phone, true
	}
	return "", "", false
}
