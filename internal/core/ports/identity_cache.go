package ports

import (
	"context"
	"time"

	"github.com/shopline/commerce/internal/core/domain"
)

// IdentityCache stores verified identities keyed by bearer token.
// Implementations must not store the raw token.
type IdentityCache interface {
	Get(ctx context.Context, token string) (*domain.Identity, bool, error)
	Set(ctx context.Context, token string, identity *domain.Identity, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}
