package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/review"
)

// ReviewModel is the persistence model for the Review aggregate (avis).
type ReviewModel struct {
	TenantAggregateModel
	ClientID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	InterventionID *uuid.UUID          `gorm:"type:uuid"`
	Rating         int                 `gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment        string              `gorm:"type:text"`
	Status         review.ReviewStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Reply          string              `gorm:"type:text"`
	RepliedAt      *time.Time
	PublishedAt    *time.Time
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review.
func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ClientID:            m.ClientID,
		InterventionID:      m.InterventionID,
		Rating:              m.Rating,
		Comment:             m.Comment,
		Status:              m.Status,
		Reply:               m.Reply,
		RepliedAt:           m.RepliedAt,
		PublishedAt:         m.PublishedAt,
	}
}

// ReviewModelFromDomain creates a persistence model from a domain Review.
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{
		ClientID:       r.ClientID,
		InterventionID: r.InterventionID,
		Rating:         r.Rating,
		Comment:        r.Comment,
		Status:         r.Status,
		Reply:          r.Reply,
		RepliedAt:      r.RepliedAt,
		PublishedAt:    r.PublishedAt,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
