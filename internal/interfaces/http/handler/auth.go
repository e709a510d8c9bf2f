package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/application/identity"
	"github.com/monartisan/backend/internal/interfaces/http/middleware"
)

// AuthService is the authentication API used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, input identity.RegisterInput) (*identity.AuthResult, error)
	Login(ctx context.Context, input identity.LoginInput) (*identity.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.AuthResult, error)
	Logout(ctx context.Context, input identity.LogoutInput) error
	Me(ctx context.Context, tenantID, userID uuid.UUID) (*identity.MeResult, error)
	ChangePassword(ctx context.Context, input identity.ChangePasswordInput) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest creates an artisan account and its owner
// @Description Sign-up payload
type RegisterRequest struct {
	BusinessName string `json:"business_name" binding:"required,min=2,max=200" example:"Plomberie Durand"`
	SIRET        string `json:"siret" binding:"omitempty,siret" example:"732 829 320 00074"`
	Trade        string `json:"trade" binding:"omitempty,max=100" example:"plombier"`
	Phone        string `json:"phone" binding:"omitempty,phone" example:"06 12 34 56 78"`
	Email        string `json:"email" binding:"required,mailbox" example:"marc@plomberie-durand.fr"`
	Password     string `json:"password" binding:"required,min=8,max=72" example:"S3cure-pass"`
	DisplayName  string `json:"display_name" binding:"required,min=1,max=100" example:"Marc Durand"`
}

// LoginRequest contains credentials
// @Description Login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,mailbox" example:"marc@plomberie-durand.fr"`
	Password string `json:"password" binding:"required" example:"S3cure-pass"`
}

// RefreshTokenRequest exchanges a refresh token
// @Description Refresh payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally revokes the refresh token too
// @Description Logout payload
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest changes the current user's password
// @Description Password change payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// Register godoc
// @ID           register
// @Summary      Create an artisan account
// @Description  Creates the artisan and its OWNER user, then signs the owner in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Sign-up details"
// @Success      201 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		BusinessName: req.BusinessName,
		SIRET:        req.SIRET,
		Trade:        req.Trade,
		Phone:        req.Phone,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Password:     req.Password,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair. Each refresh token works once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revoke the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	header := c.GetHeader(middleware.AuthHeaderKey)
	accessToken := strings.TrimSpace(strings.TrimPrefix(header, middleware.BearerPrefix))

	if err := h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		AccessToken:  accessToken,
		RefreshToken: req.RefreshToken,
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @ID           getCurrentUser
// @Summary      Current user
// @Description  The signed-in user with the artisan profile
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.MeResult]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	result, err := h.authService.Me(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change password
// @Description  Change the current user's password. Every session is signed out.
// @Tags         auth
// @Accept       json
// @Param        request body ChangePasswordRequest true "Old and new password"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		TenantID:    tenantID,
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
