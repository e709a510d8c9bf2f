package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// Channel is the delivery medium
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelInApp Channel = "IN_APP"
)

// IsValid checks if the channel is valid
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS || c == ChannelInApp
}

// Status is the delivery status of a notification
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// MaxAttempts is the number of delivery attempts before giving up
const MaxAttempts = 3

// Notification is a message to the artisan (in-app) or to a client (email, SMS)
type Notification struct {
	shared.TenantAggregateRoot
	Channel     Channel
	Recipient   string
	Subject     string
	Body        string
	Status      Status
	Attempts    int
	LastError   string
	SentAt      *time.Time
	ReadAt      *time.Time
	RelatedType string
	RelatedID   *uuid.UUID
}

// NewNotification creates a pending notification
func NewNotification(tenantID uuid.UUID, channel Channel, recipient, subject, body string) (*Notification, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Invalid notification channel")
	}
	recipient = strings.TrimSpace(recipient)
	if channel != ChannelInApp && recipient == "" {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient is required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Notification body cannot be empty")
	}
	if channel == ChannelSMS && len([]rune(body)) > 480 {
		return nil, shared.NewDomainError("INVALID_BODY", "SMS body cannot exceed 480 characters")
	}
	return &Notification{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Channel:             channel,
		Recipient:           recipient,
		Subject:             strings.TrimSpace(subject),
		Body:                body,
		Status:              StatusPending,
	}, nil
}

// RelatesTo links the notification to a business record
func (n *Notification) RelatesTo(aggregateType string, id uuid.UUID) {
	n.RelatedType = aggregateType
	n.RelatedID = &id
}

// MarkSent records a successful delivery
func (n *Notification) MarkSent(at time.Time) {
	n.Attempts++
	n.Status = StatusSent
	n.SentAt = &at
	n.LastError = ""
	n.UpdatedAt = at
}

// MarkFailed records a failed delivery attempt
func (n *Notification) MarkFailed(err error) {
	n.Attempts++
	n.Status = StatusFailed
	if err != nil {
		n.LastError = err.Error()
	}
	n.UpdatedAt = time.Now()
}

// CanRetry reports whether another delivery attempt is allowed
func (n *Notification) CanRetry() bool {
	return n.Status == StatusFailed && n.Attempts < MaxAttempts
}

// MarkRead flags an in-app notification as read
func (n *Notification) MarkRead() error {
	if n.Channel != ChannelInApp {
		return shared.NewDomainError("INVALID_CHANNEL", "Only in-app notifications can be marked as read")
	}
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
		n.UpdatedAt = now
	}
	return nil
}
