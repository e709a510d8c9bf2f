package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/application/identity"
)

// UserService is the user management API used by UserHandler
type UserService interface {
	InviteUser(ctx context.Context, tenantID, actorID uuid.UUID, input identity.InviteUserInput) (*identity.UserDTO, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID) ([]identity.UserDTO, error)
	DisableUser(ctx context.Context, tenantID, actorID, userID uuid.UUID) (*identity.UserDTO, error)
	EnableUser(ctx context.Context, tenantID, actorID, userID uuid.UUID) (*identity.UserDTO, error)
}

// UserHandler manages the employees of an artisan account
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// InviteUserRequest adds an employee
// @Description Employee invitation payload
type InviteUserRequest struct {
	Email       string `json:"email" binding:"required,mailbox" example:"julie@plomberie-durand.fr"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100" example:"Julie Martin"`
}

// Invite godoc
// @ID           inviteUser
// @Summary      Add an employee
// @Description  Creates an EMPLOYEE user on the current artisan account. Owner only.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body InviteUserRequest true "Employee"
// @Success      201 {object} APIResponse[identity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Invite(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.userID(c)
	if !ok {
		return
	}
	var req InviteUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.InviteUser(c.Request.Context(), tenantID, actorID, identity.InviteUserInput{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// List godoc
// @ID           listUsers
// @Summary      List users of the account
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[[]identity.UserDTO]
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	users, err := h.userService.ListUsers(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if users == nil {
		users = []identity.UserDTO{}
	}
	h.Success(c, users)
}

// Disable godoc
// @ID           disableUser
// @Summary      Disable a user
// @Description  The user's sessions are revoked immediately. Owner only.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/disable [post]
func (h *UserHandler) Disable(c *gin.Context) {
	h.changeStatus(c, h.userService.DisableUser)
}

// Enable godoc
// @ID           enableUser
// @Summary      Re-enable a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/enable [post]
func (h *UserHandler) Enable(c *gin.Context) {
	h.changeStatus(c, h.userService.EnableUser)
}

func (h *UserHandler) changeStatus(c *gin.Context, apply func(ctx context.Context, tenantID, actorID, userID uuid.UUID) (*identity.UserDTO, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := apply(c.Request.Context(), tenantID, actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
