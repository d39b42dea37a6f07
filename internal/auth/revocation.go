package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocations stores revoked session ids as keys that expire with the token.
type RedisRevocations struct {
	rc     *redis.Client
	prefix string
}

func NewRedisRevocations(rc *redis.Client, tablePrefix string) *RedisRevocations {
	return &RedisRevocations{rc: rc, prefix: tablePrefix + "thecrew:revoked:"}
}

func (r *RedisRevocations) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.rc.Set(ctx, r.prefix+sessionID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.rc.Exists(ctx, r.prefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryRevocations is the single-process fallback used when Redis is not configured.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	if expiresAt.After(now) {
		m.revoked[sessionID] = expiresAt
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.revoked[sessionID]
	return ok && exp.After(m.now()), nil
}

// NewRevocations picks Redis when a client is configured.
func NewRevocations(rc *redis.Client, tablePrefix string) Revocations {
	if rc == nil {
		return NewMemoryRevocations()
	}
	return NewRedisRevocations(rc, tablePrefix)
}
