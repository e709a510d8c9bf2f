package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/notification"
)

// SendRequest is a message sent by the artisan
type SendRequest struct {
	Channel     string     `json:"channel" binding:"required,oneof=EMAIL SMS IN_APP"`
	Recipient   string     `json:"recipient" binding:"max=200"`
	Subject     string     `json:"subject" binding:"max=200"`
	Body        string     `json:"body" binding:"required,max=10000"`
	RelatedType string     `json:"related_type" binding:"max=50"`
	RelatedID   *uuid.UUID `json:"related_id"`
}

// ListFilter narrows a notification listing
type ListFilter struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Channel    string `form:"channel" binding:"omitempty,oneof=EMAIL SMS IN_APP"`
	UnreadOnly bool   `form:"unread_only"`
}

// NotificationResponse is the API view of a notification
type NotificationResponse struct {
	ID          uuid.UUID            `json:"id"`
	Channel     notification.Channel `json:"channel"`
	Recipient   string               `json:"recipient,omitempty"`
	Subject     string               `json:"subject,omitempty"`
	Body        string               `json:"body"`
	Status      notification.Status  `json:"status"`
	Attempts    int                  `json:"attempts"`
	LastError   string               `json:"last_error,omitempty"`
	SentAt      *time.Time           `json:"sent_at,omitempty"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	RelatedType string               `json:"related_type,omitempty"`
	RelatedID   *uuid.UUID           `json:"related_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Channel:     n.Channel,
		Recipient:   n.Recipient,
		Subject:     n.Subject,
		Body:        n.Body,
		Status:      n.Status,
		Attempts:    n.Attempts,
		LastError:   n.LastError,
		SentAt:      n.SentAt,
		ReadAt:      n.ReadAt,
		RelatedType: n.RelatedType,
		RelatedID:   n.RelatedID,
		CreatedAt:   n.CreatedAt,
	}
}
