package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/monartisan/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationStore_JTI(t *testing.T) {
	revocations := auth.NewMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, revocations.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := revocations.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = revocations.IsTokenRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStore_Expiry(t *testing.T) {
	revocations := auth.NewMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, revocations.RevokeToken(ctx, "short", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := revocations.IsTokenRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStore_UserInvalidation(t *testing.T) {
	revocations := auth.NewMemoryRevocationStore()
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	invalid, err := revocations.IsSessionRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, invalid)

	require.NoError(t, revocations.RevokeUserSessions(ctx, "user-1", time.Hour))

	invalid, err = revocations.IsSessionRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.True(t, invalid)

	invalid, err = revocations.IsSessionRevoked(ctx, "user-1", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.False(t, invalid, "tokens issued after the invalidation stay valid")

	invalid, err = revocations.IsSessionRevoked(ctx, "user-2", issued)
	require.NoError(t, err)
	assert.False(t, invalid)
}

func TestMemoryRevocationStore_EntriesExpire(t *testing.T) {
	revocations := auth.NewMemoryRevocationStore()
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	require.NoError(t, revocations.RevokeToken(ctx, "already-expired", 0))
	revoked, err := revocations.IsTokenRevoked(ctx, "already-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revocations.RevokeUserSessions(ctx, "user-1", time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	invalid, err := revocations.IsSessionRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, invalid, "the cut-off is dropped once every token it covered has expired")
}
