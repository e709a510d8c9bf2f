package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/api/v1/clients", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetJWTUserID(c),
			"tenant_id": GetJWTTenantID(c),
			"role":      GetJWTRole(c),
		})
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/portal/overview", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject("OWNER")
	pair := newTestTokenPair(t, svc, sub)

	w := serve(jwtRouter(DefaultJWTConfig(svc)), http.MethodGet, "/api/v1/clients", pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sub.UserID.String())
	assert.Contains(t, w.Body.String(), sub.TenantID.String())
	assert.Contains(t, w.Body.String(), `"role":"OWNER"`)
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	svc := newTestJWTService()
	pair := newTestTokenPair(t, svc, newTestSubject("OWNER"))
	router := jwtRouter(DefaultJWTConfig(svc))

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"garbage", "not.a.jwt", "INVALID_TOKEN"},
		{"refresh token used as access", pair.RefreshToken, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/api/v1/clients", tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			info := decodeError(t, w)
			assert.NotEmpty(t, info.Code)
		})
	}

	t.Run("malformed scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJWTAuthMiddleware_SkipsPublicPaths(t *testing.T) {
	router := jwtRouter(DefaultJWTConfig(newTestJWTService()))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/portal/overview", "").Code)
}

func TestJWTAuthMiddleware_Revocation(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject("EMPLOYEE")
	ctx := context.Background()

	t.Run("revoked jti", func(t *testing.T) {
		revocations := auth.NewMemoryRevocationStore()
		cfg := DefaultJWTConfig(svc)
		cfg.RevocationStore = revocations
		pair := newTestTokenPair(t, svc, sub)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, revocations.RevokeToken(ctx, claims.ID, time.Hour))

		w := serve(jwtRouter(cfg), http.MethodGet, "/api/v1/clients", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", decodeError(t, w).Code)
	})

	t.Run("user sessions invalidated", func(t *testing.T) {
		revocations := auth.NewMemoryRevocationStore()
		cfg := DefaultJWTConfig(svc)
		cfg.RevocationStore = revocations
		pair := newTestTokenPair(t, svc, sub)
		require.NoError(t, revocations.RevokeUserSessions(ctx, sub.UserID.String(), time.Hour))

		w := serve(jwtRouter(cfg), http.MethodGet, "/api/v1/clients", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
