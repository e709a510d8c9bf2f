package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/monartisan/backend/internal/application/notification"
	"github.com/monartisan/backend/internal/domain/shared"
)

// NotificationService is the messaging API used by NotificationHandler
type NotificationService interface {
	Send(ctx context.Context, tenantID uuid.UUID, req notificationapp.SendRequest) (*notificationapp.NotificationResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter notificationapp.ListFilter) (*shared.Paginated[notificationapp.NotificationResponse], error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*notificationapp.NotificationResponse, error)
}

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	BaseHandler
	notificationService NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Send godoc
// @ID           sendNotification
// @Summary      Send a message
// @Description  EMAIL and SMS go to the recipient; IN_APP lands in the artisan's inbox. Failed sends are retried.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body notificationapp.SendRequest true "Message"
// @Success      201 {object} APIResponse[notificationapp.NotificationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications [post]
func (h *NotificationHandler) Send(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req notificationapp.SendRequest
	if !h.bindJSON(c, &req) {
		return
	}
	n, err := h.notificationService.Send(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, n)
}

// List godoc
// @ID           listNotifications
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        channel query string false "EMAIL, SMS or IN_APP"
// @Param        unread_only query bool false "Only unread in-app notifications"
// @Success      200 {object} APIResponse[[]notificationapp.NotificationResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter notificationapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.notificationService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} APIResponse[notificationapp.NotificationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.notificationService.MarkRead(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}
