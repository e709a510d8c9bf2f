package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.POST("/api/v1/users", RequireRole(nil, "OWNER"), func(c *gin.Context) { c.Status(http.StatusCreated) })

	owner := newTestTokenPair(t, svc, newTestSubject("OWNER"))
	employee := newTestTokenPair(t, svc, newTestSubject("EMPLOYEE"))

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/api/v1/users", owner.AccessToken).Code)

	w := serve(router, http.MethodPost, "/api/v1/users", employee.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireRole(nil, "OWNER"), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/x", "").Code)
}

func TestRequireAdminKey(t *testing.T) {
	call := func(key, header string) int {
		router := gin.New()
		router.POST("/admin", RequireAdminKey(key), func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if header != "" {
			req.Header.Set(AdminKeyHeader, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("k3y", "k3y"))
	assert.Equal(t, http.StatusUnauthorized, call("k3y", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, call("k3y", ""))
	assert.Equal(t, http.StatusNotFound, call("", "anything"))
}
