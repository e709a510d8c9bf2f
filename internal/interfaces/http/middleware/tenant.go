package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"github.com/monartisan/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantValidator reports whether an artisan account may still use the API
type TenantValidator interface {
	ValidateTenant(ctx context.Context, tenantID uuid.UUID) error
}

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// Validator rejects unknown or suspended artisans when set
	Validator TenantValidator
	Logger    *zap.Logger
}

// TenantMiddleware binds the request to the artisan carried by the access
// token. It must run after the JWT middleware. An X-Tenant-ID header is
// accepted only when it names the same artisan.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(GetJWTTenantID(c))
		if err != nil || tenantID == uuid.Nil {
			abortWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Tenant identification required")
			return
		}

		if header := c.GetHeader(TenantHeaderKey); header != "" {
			requested, err := uuid.Parse(header)
			if err != nil || requested != tenantID {
				if cfg.Logger != nil {
					cfg.Logger.Warn("Tenant header does not match token",
						zap.String("tenant_id", tenantID.String()),
						zap.String("header", header),
						zap.String("path", c.Request.URL.Path))
				}
				abortWithCode(c, http.StatusForbidden, "TENANT_MISMATCH", "Tenant header does not match the authenticated account")
				return
			}
		}

		if cfg.Validator != nil {
			if err := cfg.Validator.ValidateTenant(c.Request.Context(), tenantID); err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Warn("Tenant validation failed",
						zap.String("tenant_id", tenantID.String()),
						zap.Error(err))
				}
				if errors.Is(err, shared.ErrTenantSuspended) {
					abortWithCode(c, http.StatusForbidden, "TENANT_SUSPENDED", "This account is suspended")
					return
				}
				abortWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or inactive tenant")
				return
			}
		}

		c.Set(TenantIDKey, tenantID.String())
		ctx := c.Request.Context()
		ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWithCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestIDFromContext(c)))
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetTenantUUID retrieves the tenant ID as UUID from gin.Context
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return uuid.Parse(tenantID)
}
