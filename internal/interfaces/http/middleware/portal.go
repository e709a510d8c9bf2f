package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/application/portal"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	PortalTokenHeader = "X-Portal-Token"
	PortalTokenParam  = "token"
	PortalSessionKey  = "portal_session"
)

// PortalAuthenticator resolves a portal token to a client session
type PortalAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*portal.Session, error)
}

// PortalAuth authenticates client portal requests. The token is read from
// the X-Portal-Token header, then from the :token path parameter.
func PortalAuth(authenticator PortalAuthenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := c.GetHeader(PortalTokenHeader)
		if token == "" {
			token = c.Param(PortalTokenParam)
		}

		sess, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, portal.ErrInvalidToken):
				abortWithCode(c, http.StatusUnauthorized, "INVALID_PORTAL_TOKEN", "Invalid or revoked portal link")
			case errors.Is(err, shared.ErrTenantSuspended):
				abortWithCode(c, http.StatusForbidden, "TENANT_SUSPENDED", "This artisan account is suspended")
			default:
				log.Error("Portal authentication failed", zap.Error(err))
				abortWithCode(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			}
			return
		}

		c.Set(PortalSessionKey, sess)
		c.Set(TenantIDKey, sess.TenantID().String())

		ctx := c.Request.Context()
		l := logger.FromContext(ctx)
		ctx, l = logger.WithTenantID(ctx, l, sess.TenantID().String())
		ctx, _ = logger.WithPortalClientID(ctx, l, sess.Client.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetPortalSession returns the session set by PortalAuth
func GetPortalSession(c *gin.Context) *portal.Session {
	if v, ok := c.Get(PortalSessionKey); ok {
		if sess, ok := v.(*portal.Session); ok {
			return sess
		}
	}
	return nil
}
