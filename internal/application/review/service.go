package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles client reviews and their moderation
type Service struct {
	reviewRepo       review.ReviewRepository
	interventionRepo intervention.InterventionRepository
	eventBus         shared.EventPublisher
	logger           *zap.Logger
}

// NewService creates a new review service
func NewService(
	reviewRepo review.ReviewRepository,
	interventionRepo intervention.InterventionRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reviewRepo:       reviewRepo,
		interventionRepo: interventionRepo,
		eventBus:         eventBus,
		logger:           logger,
	}
}

// Submit records a client's review. A review about an intervention requires
// the intervention to belong to the client and be completed; a client may
// review each intervention once.
func (s *Service) Submit(ctx context.Context, tenantID, clientID uuid.UUID, req SubmitRequest) (*ReviewResponse, error) {
	if req.InterventionID != nil {
		i, err := s.interventionRepo.FindByIDForTenant(ctx, tenantID, *req.InterventionID)
		if err != nil {
			return nil, err
		}
		if i.ClientID != clientID {
			return nil, shared.ErrNotFound
		}
		if i.Status != intervention.InterventionStatusCompleted {
			return nil, shared.NewDomainError("INVALID_STATE", "Only completed interventions can be reviewed")
		}
	}

	exists, err := s.reviewRepo.ExistsForIntervention(ctx, tenantID, clientID, req.InterventionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "A review was already submitted for this intervention")
	}

	r, err := review.NewReview(tenantID, clientID, req.InterventionID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	s.logger.Info("Review submitted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("review_id", r.ID.String()),
		zap.Int("rating", r.Rating))
	response := ToReviewResponse(r)
	return &response, nil
}

// Get returns a review of the tenant
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToReviewResponse(r)
	return &response, nil
}

// List returns a page of reviews
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[ReviewResponse], error) {
	domainFilter := review.ReviewFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		}.Normalize(),
	}
	if filter.Status != "" {
		status := review.ReviewStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}
	reviews, total, err := s.reviewRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = ToReviewResponse(&reviews[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Publish makes a review public
func (s *Service) Publish(ctx context.Context, tenantID, id uuid.UUID) (*ReviewResponse, error) {
	return s.moderate(ctx, tenantID, id, (*review.Review).Publish)
}

// Hide removes a review from public listings
func (s *Service) Hide(ctx context.Context, tenantID, id uuid.UUID) (*ReviewResponse, error) {
	return s.moderate(ctx, tenantID, id, (*review.Review).Hide)
}

// Reply sets the artisan's answer
func (s *Service) Reply(ctx context.Context, tenantID, id uuid.UUID, req ReplyRequest) (*ReviewResponse, error) {
	return s.moderate(ctx, tenantID, id, func(r *review.Review) error {
		return r.RespondWith(req.Reply)
	})
}

// Stats summarizes published ratings
func (s *Service) Stats(ctx context.Context, tenantID uuid.UUID) (review.Stats, error) {
	histogram, err := s.reviewRepo.RatingHistogram(ctx, tenantID)
	if err != nil {
		return review.Stats{}, err
	}
	return review.ComputeStats(histogram), nil
}

func (s *Service) moderate(ctx context.Context, tenantID, id uuid.UUID, apply func(*review.Review) error) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	response := ToReviewResponse(r)
	return &response, nil
}

func (s *Service) publish(ctx context.Context, r *review.Review) {
	events := r.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish review events", zap.Error(err))
		}
	}
	r.ClearDomainEvents()
}
