package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_HashesToken(t *testing.T) {
	key := cacheKey("secret.jwt.token")

	assert.True(t, strings.HasPrefix(key, "identity:"))
	assert.NotContains(t, key, "secret")
	assert.Len(t, strings.TrimPrefix(key, "identity:"), 64)
	assert.Equal(t, key, cacheKey("secret.jwt.token"))
	assert.NotEqual(t, key, cacheKey("secret.jwt.tokem"))
}

func TestDecodeIdentity(t *testing.T) {
	identity, err := decodeIdentity([]byte(`{"id":"u1","email":"alice@example.com","full_name":"Alice","created_at":"2026-03-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "Alice", identity.FullName)

	_, err = decodeIdentity([]byte(`{"email":"x"}`))
	assert.Error(t, err)
	_, err = decodeIdentity([]byte(`garbage`))
	assert.Error(t, err)
}

func TestIdentityCache_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewIdentityCache(client)

	_, ok, err := cache.Get(context.Background(), "tok")
	assert.Error(t, err)
	assert.False(t, ok)
}
