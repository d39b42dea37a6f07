package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevocations()

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationsExpire(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevocations()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "jti-1", now.Add(time.Minute)))

	r.now = func() time.Time { return now.Add(2 * time.Minute) }
	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewRevocationsFallsBackToMemory(t *testing.T) {
	_, ok := NewRevocations(nil, "dev_").(*MemoryRevocations)
	assert.True(t, ok)
}
