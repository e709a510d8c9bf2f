package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for the Notification aggregate.
type NotificationModel struct {
	TenantAggregateModel
	Channel     notification.Channel `gorm:"type:varchar(10);not null;index"`
	Recipient   string               `gorm:"type:varchar(200)"`
	Subject     string               `gorm:"type:varchar(200)"`
	Body        string               `gorm:"type:text;not null"`
	Status      notification.Status  `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	Attempts    int                  `gorm:"not null;default:0"`
	LastError   string               `gorm:"type:text"`
	SentAt      *time.Time
	ReadAt      *time.Time
	RelatedType string     `gorm:"type:varchar(30)"`
	RelatedID   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Channel:             m.Channel,
		Recipient:           m.Recipient,
		Subject:             m.Subject,
		Body:                m.Body,
		Status:              m.Status,
		Attempts:            m.Attempts,
		LastError:           m.LastError,
		SentAt:              m.SentAt,
		ReadAt:              m.ReadAt,
		RelatedType:         m.RelatedType,
		RelatedID:           m.RelatedID,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
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
	}
	m.FromDomainTenantAggregateRoot(n.TenantAggregateRoot)
	return m
}
