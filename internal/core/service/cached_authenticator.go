package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/shopline/commerce/internal/api/metrics"
	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

// CachedAuthenticator fronts a remote Authenticator with an identity cache.
// Cache failures never fail a request; the peer is asked instead.
type CachedAuthenticator struct {
	next   ports.Authenticator
	cache  ports.IdentityCache
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewCachedAuthenticator returns next unchanged when cache is nil or ttl is not positive.
func NewCachedAuthenticator(next ports.Authenticator, cache ports.IdentityCache, ttl time.Duration, logger zerolog.Logger) ports.Authenticator {
	if cache == nil || ttl <= 0 {
		return next
	}
	return &CachedAuthenticator{next: next, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

func (a *CachedAuthenticator) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	identity, ok, err := a.cache.Get(ctx, token)
	switch {
	case err != nil:
		metrics.IdentityCacheTotal.WithLabelValues("error").Inc()
		a.logger.Warn().Err(err).Msg("identity cache read failed")
	case ok:
		metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
		return identity, nil
	default:
		metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()
	}

	identity, err = a.next.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			if derr := a.cache.Delete(ctx, token); derr != nil {
				a.logger.Warn().Err(derr).Msg("identity cache delete failed")
			}
		}
		return nil, err
	}

	ttl := a.entryTTL(token)
	if ttl <= 0 {
		return identity, nil
	}
	if serr := a.cache.Set(ctx, token, identity, ttl); serr != nil {
		a.logger.Warn().Err(serr).Msg("identity cache write failed")
	}
	return identity, nil
}

// entryTTL bounds the cache entry by the token's remaining lifetime. The
// unverified exp claim is only an upper bound; the peer already accepted the
// token. Tokens without a readable exp are not cached.
func (a *CachedAuthenticator) entryTTL(token string) time.Duration {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return 0
	}
	return min(a.ttl, claims.ExpiresAt.Sub(a.now()))
}
