package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore cuts JWTs short before their expiry. Logout and refresh
// rotation revoke a single token by JTI; disabling a user or changing a
// password revokes every session of the user opened up to that moment.
type RevocationStore interface {
	// RevokeToken keeps jti revoked for ttl, the token's remaining lifetime
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUserSessions rejects every token issued to userID so far
	RevokeUserSessions(ctx context.Context, userID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const revocationKeyPrefix = "monartisan:revoked:"

func tokenKey(jti string) string     { return revocationKeyPrefix + "jti:" + jti }
func sessionKey(userID string) string { return revocationKeyPrefix + "user:" + userID }

// RedisRevocationStore shares revocations between API instances
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	// an expired token is rejected by signature validation already
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

func (s *RedisRevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token %s: %w", jti, err)
	}
	return n > 0, nil
}

// RevokeUserSessions stores the cut-off as Unix seconds
func (s *RedisRevocationStore) RevokeUserSessions(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions of user %s: %w", userID, err)
	}
	return nil
}

func (s *RedisRevocationStore) IsSessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	cutoff, err := s.client.Get(ctx, sessionKey(userID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check sessions of user %s: %w", userID, err)
	}
	return issuedAt.Unix() <= cutoff, nil
}

// revocation is one entry of the in-memory store. For a session entry at is
// the cut-off time.
type revocation struct {
	at      time.Time
	expires time.Time
}

func (r revocation) live(now time.Time) bool {
	return r.expires.IsZero() || now.Before(r.expires)
}

// MemoryRevocationStore is used when Redis is not configured. Revocations
// are local to the process.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]revocation
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]revocation)}
}

func (s *MemoryRevocationStore) put(key string, ttl time.Duration) {
	now := time.Now()
	entry := revocation{at: now}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

// get returns a live entry and drops an expired one
func (s *MemoryRevocationStore) get(key string) (revocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return revocation{}, false
	}
	if !entry.live(time.Now()) {
		delete(s.entries, key)
		return revocation{}, false
	}
	return entry, true
}

func (s *MemoryRevocationStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.put(tokenKey(jti), ttl)
	return nil
}

func (s *MemoryRevocationStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := s.get(tokenKey(jti))
	return ok, nil
}

func (s *MemoryRevocationStore) RevokeUserSessions(_ context.Context, userID string, ttl time.Duration) error {
	s.put(sessionKey(userID), ttl)
	return nil
}

func (s *MemoryRevocationStore) IsSessionRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	entry, ok := s.get(sessionKey(userID))
	if !ok {
		return false, nil
	}
	return !issuedAt.After(entry.at), nil
}

var (
	_ RevocationStore = (*RedisRevocationStore)(nil)
	_ RevocationStore = (*MemoryRevocationStore)(nil)
)
