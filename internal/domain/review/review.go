package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
)

// ReviewStatus represents the moderation status of a review (avis)
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "PENDING"
	ReviewStatusPublished ReviewStatus = "PUBLISHED"
	ReviewStatusHidden    ReviewStatus = "HIDDEN"
)

// IsValid checks if the status is valid
func (s ReviewStatus) IsValid() bool {
	return s == ReviewStatusPending || s == ReviewStatusPublished || s == ReviewStatusHidden
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReviewStatus) CanTransitionTo(target ReviewStatus) bool {
	switch s {
	case ReviewStatusPending:
		return target == ReviewStatusPublished || target == ReviewStatusHidden
	case ReviewStatusPublished:
		return target == ReviewStatusHidden
	case ReviewStatusHidden:
		return target == ReviewStatusPublished
	}
	return false
}

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a client's feedback on the artisan's work
type Review struct {
	shared.TenantAggregateRoot
	ClientID       uuid.UUID
	InterventionID *uuid.UUID
	Rating         int
	Comment        string
	Status         ReviewStatus
	Reply          string
	RepliedAt      *time.Time
	PublishedAt    *time.Time
}

// NewReview creates a pending review
func NewReview(tenantID, clientID uuid.UUID, interventionID *uuid.UUID, rating int, comment string) (*Review, error) {
	if tenantID == uuid.Nil || clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REVIEW", "Tenant and client are required")
	}
	if rating < MinRating || rating > MaxRating {
		return nil, shared.NewDomainError("INVALID_RATING", fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}
	r := &Review{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		InterventionID:      interventionID,
		Rating:              rating,
		Comment:             comment,
		Status:              ReviewStatusPending,
	}
	r.AddDomainEvent(NewReviewSubmittedEvent(r))
	return r, nil
}

// Publish makes the review public
func (r *Review) Publish() error {
	if !r.Status.CanTransitionTo(ReviewStatusPublished) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot publish review in %s status", r.Status))
	}
	now := time.Now()
	r.Status = ReviewStatusPublished
	r.PublishedAt = &now
	r.UpdatedAt = now
	return nil
}

// Hide removes the review from public listings
func (r *Review) Hide() error {
	if !r.Status.CanTransitionTo(ReviewStatusHidden) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot hide review in %s status", r.Status))
	}
	r.Status = ReviewStatusHidden
	r.UpdatedAt = time.Now()
	return nil
}

// RespondWith sets the artisan's public answer
func (r *Review) RespondWith(reply string) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return shared.NewDomainError("INVALID_REPLY", "Reply cannot be empty")
	}
	if len(reply) > 2000 {
		return shared.NewDomainError("INVALID_REPLY", "Reply cannot exceed 2000 characters")
	}
	now := time.Now()
	r.Reply = reply
	r.RepliedAt = &now
	r.UpdatedAt = now
	return nil
}

// Stats summarizes the ratings of an artisan
type Stats struct {
	Count        int64         `json:"count"`
	Average      float64       `json:"average"`
	Distribution map[int]int64 `json:"distribution"`
}

// ComputeStats builds Stats from a rating -> count histogram
func ComputeStats(histogram map[int]int64) Stats {
	stats := Stats{Distribution: make(map[int]int64, MaxRating)}
	var sum int64
	for rating := MinRating; rating <= MaxRating; rating++ {
		n := histogram[rating]
		stats.Distribution[rating] = n
		stats.Count += n
		sum += int64(rating) * n
	}
	if stats.Count > 0 {
		avg := float64(sum) / float64(stats.Count)
		stats.Average = float64(int(avg*100+0.5)) / 100
	}
	return stats
}
