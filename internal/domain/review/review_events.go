package review

import (
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// Aggregate type constant for Review
const AggregateTypeReview = "Review"

// EventTypeReviewSubmitted is published when a client leaves a review
const EventTypeReviewSubmitted = "ReviewSubmitted"

// ReviewSubmittedEvent is published when a client leaves a review
type ReviewSubmittedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Rating   int       `json:"rating"`
}

func (e *ReviewSubmittedEvent) EventType() string { return EventTypeReviewSubmitted }

// NewReviewSubmittedEvent creates a new ReviewSubmittedEvent
func NewReviewSubmittedEvent(r *Review) *ReviewSubmittedEvent {
	return &ReviewSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewSubmitted, AggregateTypeReview, r.ID, r.TenantID),
		ClientID:        r.ClientID,
		Rating:          r.Rating,
	}
}
