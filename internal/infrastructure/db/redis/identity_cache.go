package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopline/commerce/internal/core/domain"
)

// IdentityCache stores verified identities in Redis.
// Key format: identity:<sha256(token) hex>. The raw token is never stored.
type IdentityCache struct {
	client *redis.Client
}

func NewIdentityCache(client *redis.Client) *IdentityCache {
	return &IdentityCache{client: client}
}

func (c *IdentityCache) Get(ctx context.Context, token string) (*domain.Identity, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("identity cache get: %w", err)
	}
	identity, err := decodeIdentity(raw)
	if err != nil {
		return nil, false, err
	}
	return identity, true, nil
}

func (c *IdentityCache) Set(ctx context.Context, token string, identity *domain.Identity, ttl time.Duration) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	return nil
}

func (c *IdentityCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, cacheKey(token)).Err(); err != nil {
		return fmt.Errorf("identity cache delete: %w", err)
	}
	return nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:" + hex.EncodeToString(sum[:])
}

func decodeIdentity(raw []byte) (*domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("identity cache decode: %w", err)
	}
	if identity.ID == "" {
		return nil, errors.New("identity cache decode: missing id")
	}
	return &identity, nil
}
