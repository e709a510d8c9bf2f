package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "monartisan-test",
	})
}

func testSubject() Subject {
	return Subject{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Email:    "marc@plomberie-durand.fr",
		Role:     "OWNER",
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	sub := testSubject()

	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sub.TenantID.String(), claims.TenantID)
	assert.Equal(t, sub.Email, claims.Email)
	assert.Equal(t, "OWNER", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)

	tenantID, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, sub.TenantID, tenantID)
}

func TestValidateRefreshToken(t *testing.T) {
	svc := newTestJWTService()
	sub := testSubject()
	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID.String(), claims.UserID)
	assert.Empty(t, claims.Email)

	// tokens are not interchangeable
	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-that-is-32-chars-long",
		AccessTokenExpiration: time.Minute,
		Issuer:                "monartisan-test",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a token without tenant is refused
	claims := svc.claims(Subject{UserID: uuid.New()}, TokenTypeAccess, time.Now(), time.Minute)
	claims.TenantID = ""
	raw, err := sign(claims, svc.accessSecret)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, ErrMissingTenantID)

	// wrong signing algorithm
	none := jwt.NewWithClaims(jwt.SigningMethodNone, svc.claims(testSubject(), TokenTypeAccess, time.Now(), time.Minute))
	raw, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_RefreshSecretFallback(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-one-secret-configured-here-32c"})
	assert.Equal(t, svc.accessSecret, svc.refreshSecret)
}
