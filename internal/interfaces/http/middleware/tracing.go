package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrorCodeKey holds the application error code written by a handler
const ErrorCodeKey = "error_code"

// Tracing starts a server span per request. Health endpoints are not traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			path := c.Request.URL.Path
			return path != "/health" && path != "/ready" && !strings.HasPrefix(path, "/swagger")
		}),
	)
}

// SpanAttributes copies request, tenant and user identity onto the active
// span and tags failed responses with their error code. Place it after the
// authentication middleware of a route group.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		attrs := make([]attribute.KeyValue, 0, 4)
		if v := logger.GetRequestID(ctx); v != "" {
			attrs = append(attrs, attribute.String("request_id", v))
		}
		if v := GetTenantID(c); v != "" {
			attrs = append(attrs, attribute.String("tenant_id", v))
		}
		if v := GetJWTUserID(c); v != "" {
			attrs = append(attrs, attribute.String("user_id", v))
		}
		if v := logger.GetPortalClientID(ctx); v != "" {
			attrs = append(attrs, attribute.String("portal_client_id", v))
		}
		span.SetAttributes(attrs...)

		c.Next()

		if code := c.GetString(ErrorCodeKey); code != "" {
			span.SetAttributes(attribute.String("error.code", code))
		}
	}
}
