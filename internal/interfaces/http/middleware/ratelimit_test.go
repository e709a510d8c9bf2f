package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Window(t *testing.T) {
	ctx := context.Background()
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, remaining, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, remaining, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _, _ = rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	ok, _, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "window reset")
}

func TestRateLimitByKey(t *testing.T) {
	router := gin.New()
	limiter := NewRateLimiter(1, time.Minute)
	router.POST("/api/v1/auth/login", RateLimitByKey(limiter, nil, func(c *gin.Context) string {
		return c.GetHeader("X-Forwarded-User")
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := call("marc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = call("marc")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Code)

	assert.Equal(t, http.StatusOK, call("julie").Code)
}
