package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"github.com/monartisan/backend/internal/infrastructure/config"
	"github.com/monartisan/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "monartisan-test",
	})
}

func newTestSubject(role string) auth.Subject {
	return auth.Subject{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Email:    "marc@plomberie-durand.fr",
		Role:     role,
	}
}

func newTestTokenPair(t *testing.T, svc *auth.JWTService, sub auth.Subject) *auth.TokenPair {
	t.Helper()
	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	return pair
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}
