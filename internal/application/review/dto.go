package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/review"
)

// SubmitRequest is a review left by a client from the portal
type SubmitRequest struct {
	InterventionID *uuid.UUID `json:"intervention_id"`
	Rating         int        `json:"rating" binding:"required,min=1,max=5"`
	Comment        string     `json:"comment" binding:"max=2000"`
}

// ReplyRequest is the artisan's public answer to a review
type ReplyRequest struct {
	Reply string `json:"reply" binding:"required,max=2000"`
}

// ListFilter narrows a review listing
type ListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING PUBLISHED HIDDEN"`
	ClientID *uuid.UUID `form:"-"`
}

// ReviewResponse is the API view of a review
type ReviewResponse struct {
	ID             uuid.UUID           `json:"id"`
	ClientID       uuid.UUID           `json:"client_id"`
	InterventionID *uuid.UUID          `json:"intervention_id,omitempty"`
	Rating         int                 `json:"rating"`
	Comment        string              `json:"comment,omitempty"`
	Status         review.ReviewStatus `json:"status"`
	Reply          string              `json:"reply,omitempty"`
	RepliedAt      *time.Time          `json:"replied_at,omitempty"`
	PublishedAt    *time.Time          `json:"published_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ToReviewResponse converts a domain review
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:             r.ID,
		ClientID:       r.ClientID,
		InterventionID: r.InterventionID,
		Rating:         r.Rating,
		Comment:        r.Comment,
		Status:         r.Status,
		Reply:          r.Reply,
		RepliedAt:      r.RepliedAt,
		PublishedAt:    r.PublishedAt,
		CreatedAt:      r.CreatedAt,
	}
}
