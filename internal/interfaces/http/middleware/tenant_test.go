package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTenantValidator map[uuid.UUID]error

func (s stubTenantValidator) ValidateTenant(_ context.Context, tenantID uuid.UUID) error {
	return s[tenantID]
}

func tenantRouter(validator TenantValidator) *gin.Engine {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc), TenantMiddleware(TenantMiddlewareConfig{Validator: validator}))
	router.GET("/api/v1/quotes", func(c *gin.Context) {
		tenantID, err := GetTenantUUID(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tenant_id": tenantID.String(),
			"logged":    logger.GetTenantID(c.Request.Context()),
		})
	})
	return router
}

func TestTenantMiddleware(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject("OWNER")
	pair := newTestTokenPair(t, svc, sub)

	request := func(router *gin.Engine, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		if header != "" {
			req.Header.Set(TenantHeaderKey, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("tenant from token", func(t *testing.T) {
		w := request(tenantRouter(nil), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"tenant_id":"`+sub.TenantID.String())
		assert.Contains(t, w.Body.String(), `"logged":"`+sub.TenantID.String())
	})

	t.Run("matching header", func(t *testing.T) {
		w := request(tenantRouter(nil), sub.TenantID.String())
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other tenant in header", func(t *testing.T) {
		w := request(tenantRouter(nil), uuid.NewString())
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "TENANT_MISMATCH", decodeError(t, w).Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := request(tenantRouter(nil), "acme")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("suspended artisan", func(t *testing.T) {
		w := request(tenantRouter(stubTenantValidator{sub.TenantID: shared.ErrTenantSuspended}), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "TENANT_SUSPENDED", decodeError(t, w).Code)
	})

	t.Run("unknown artisan", func(t *testing.T) {
		w := request(tenantRouter(stubTenantValidator{sub.TenantID: shared.ErrNotFound}), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTenantMiddleware_RequiresClaims(t *testing.T) {
	router := gin.New()
	router.Use(TenantMiddleware(TenantMiddlewareConfig{}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
