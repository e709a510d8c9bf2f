package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reviewapp "github.com/monartisan/backend/internal/application/review"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
)

// ReviewService is the review moderation API used by ReviewHandler
type ReviewService interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*reviewapp.ReviewResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter reviewapp.ListFilter) (*shared.Paginated[reviewapp.ReviewResponse], error)
	Publish(ctx context.Context, tenantID, id uuid.UUID) (*reviewapp.ReviewResponse, error)
	Hide(ctx context.Context, tenantID, id uuid.UUID) (*reviewapp.ReviewResponse, error)
	Reply(ctx context.Context, tenantID, id uuid.UUID, req reviewapp.ReplyRequest) (*reviewapp.ReviewResponse, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (review.Stats, error)
}

// ReviewHandler lets the artisan moderate client reviews
type ReviewHandler struct {
	BaseHandler
	reviewService ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List godoc
// @ID           listReviews
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        status query string false "PENDING, PUBLISHED or HIDDEN"
// @Param        client_id query string false "Client ID" format(uuid)
// @Success      200 {object} APIResponse[[]reviewapp.ReviewResponse]
// @Security     BearerAuth
// @Router       /reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter reviewapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.ClientID, ok = h.queryUUID(c, "client_id"); !ok {
		return
	}
	page, err := h.reviewService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// Get godoc
// @ID           getReview
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	h.apply(c, h.reviewService.Get)
}

// Stats godoc
// @ID           getReviewStats
// @Summary      Rating statistics
// @Description  Count, average and distribution of published reviews
// @Tags         reviews
// @Produce      json
// @Success      200 {object} APIResponse[review.Stats]
// @Security     BearerAuth
// @Router       /reviews/stats [get]
func (h *ReviewHandler) Stats(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	stats, err := h.reviewService.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Publish godoc
// @ID           publishReview
// @Summary      Publish a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id}/publish [post]
func (h *ReviewHandler) Publish(c *gin.Context) {
	h.apply(c, h.reviewService.Publish)
}

// Hide godoc
// @ID           hideReview
// @Summary      Hide a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id}/hide [post]
func (h *ReviewHandler) Hide(c *gin.Context) {
	h.apply(c, h.reviewService.Hide)
}

// Reply godoc
// @ID           replyToReview
// @Summary      Answer a review publicly
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Param        request body reviewapp.ReplyRequest true "Reply"
// @Success      200 {object} APIResponse[reviewapp.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id}/reply [post]
func (h *ReviewHandler) Reply(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req reviewapp.ReplyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.reviewService.Reply(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

func (h *ReviewHandler) apply(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*reviewapp.ReviewResponse, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	r, err := action(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}
