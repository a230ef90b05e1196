package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/infrastructure/security"
)

var cacheClock = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// issueCacheToken signs a token whose exp is ttl after issuedAt.
func issueCacheToken(t *testing.T, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	codec, err := security.NewJWTCodec("cache-secret", security.DefaultAlgorithm)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	token, err := codec.WithClock(func() time.Time { return issuedAt }).Issue(alice.ID, alice.Email, ttl)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func newTestCachedAuthenticator(next *stubAuthenticator, cache *stubIdentityCache, ttl time.Duration) *CachedAuthenticator {
	a := NewCachedAuthenticator(next, cache, ttl, zerolog.Nop()).(*CachedAuthenticator)
	a.now = func() time.Time { return cacheClock }
	return a
}

type stubAuthenticator struct {
	identity *domain.Identity
	err      error
	calls    int
}

func (a *stubAuthenticator) Authenticate(_ context.Context, _ string) (*domain.Identity, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.identity, nil
}

type stubIdentityCache struct {
	entries map[string]*domain.Identity
	ttls    map[string]time.Duration
	deleted []string
	err     error
}

func newStubIdentityCache() *stubIdentityCache {
	return &stubIdentityCache{entries: map[string]*domain.Identity{}, ttls: map[string]time.Duration{}}
}

func (c *stubIdentityCache) Get(_ context.Context, token string) (*domain.Identity, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	id, ok := c.entries[token]
	return id, ok, nil
}

func (c *stubIdentityCache) Set(_ context.Context, token string, identity *domain.Identity, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.entries[token] = identity
	c.ttls[token] = ttl
	return nil
}

func (c *stubIdentityCache) Delete(_ context.Context, token string) error {
	if c.err != nil {
		return c.err
	}
	c.deleted = append(c.deleted, token)
	delete(c.entries, token)
	return nil
}

func TestNewCachedAuthenticator_DisabledReturnsNext(t *testing.T) {
	next := &stubAuthenticator{}
	if got := NewCachedAuthenticator(next, nil, time.Minute, zerolog.Nop()); got != next {
		t.Fatalf("expected next when cache is nil")
	}
	if got := NewCachedAuthenticator(next, newStubIdentityCache(), 0, zerolog.Nop()); got != next {
		t.Fatalf("expected next when ttl is zero")
	}
}

func TestCachedAuthenticator_MissThenHit(t *testing.T) {
	next := &stubAuthenticator{identity: alice}
	cache := newStubIdentityCache()
	auth := newTestCachedAuthenticator(next, cache, time.Minute)
	tok := issueCacheToken(t, cacheClock, 30*time.Minute)

	for i := 0; i < 3; i++ {
		got, err := auth.Authenticate(context.Background(), tok)
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}
		if got.ID != alice.ID {
			t.Fatalf("unexpected identity: %+v", got)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one peer call, got %d", next.calls)
	}
	if cache.ttls[tok] != time.Minute {
		t.Fatalf("expected ttl of one minute, got %s", cache.ttls[tok])
	}
}

func TestCachedAuthenticator_EntryNeverOutlivesToken(t *testing.T) {
	next := &stubAuthenticator{identity: alice}
	cache := newStubIdentityCache()
	auth := newTestCachedAuthenticator(next, cache, 30*time.Minute)
	tok := issueCacheToken(t, cacheClock.Add(-29*time.Minute), 30*time.Minute)

	if _, err := auth.Authenticate(context.Background(), tok); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got := cache.ttls[tok]; got != time.Minute {
		t.Fatalf("expected entry ttl capped at the token's remaining minute, got %s", got)
	}
}

func TestCachedAuthenticator_ExpiredOrUnreadableTokenNotCached(t *testing.T) {
	tokens := map[string]string{
		"expired":     issueCacheToken(t, cacheClock.Add(-2*time.Minute), time.Minute),
		"expires now": issueCacheToken(t, cacheClock.Add(-time.Minute), time.Minute),
		"opaque":      "not-a-jwt",
	}
	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			next := &stubAuthenticator{identity: alice}
			cache := newStubIdentityCache()
			auth := newTestCachedAuthenticator(next, cache, 30*time.Minute)

			for i := 0; i < 2; i++ {
				if _, err := auth.Authenticate(context.Background(), tok); err != nil {
					t.Fatalf("Authenticate returned error: %v", err)
				}
			}
			if len(cache.entries) != 0 {
				t.Fatalf("expected nothing cached, got %d entries", len(cache.entries))
			}
			if next.calls != 2 {
				t.Fatalf("expected every call to reach the peer, got %d", next.calls)
			}
		})
	}
}

func TestCachedAuthenticator_UnauthenticatedEvicts(t *testing.T) {
	next := &stubAuthenticator{err: fmt.Errorf("%w: peer said no", domain.ErrUnauthenticated)}
	cache := newStubIdentityCache()
	auth := NewCachedAuthenticator(next, cache, time.Minute, zerolog.Nop())

	if _, err := auth.Authenticate(context.Background(), "tok"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != "tok" {
		t.Fatalf("expected tok to be evicted, got %v", cache.deleted)
	}
	if _, ok := cache.entries["tok"]; ok {
		t.Fatalf("rejected token must not be cached")
	}
}

func TestCachedAuthenticator_UpstreamErrorNotCached(t *testing.T) {
	next := &stubAuthenticator{err: domain.ErrUpstreamUnavailable}
	cache := newStubIdentityCache()
	auth := NewCachedAuthenticator(next, cache, time.Minute, zerolog.Nop())

	if _, err := auth.Authenticate(context.Background(), "tok"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(cache.entries) != 0 {
		t.Fatalf("expected empty cache, got %d entries", len(cache.entries))
	}
}

func TestCachedAuthenticator_CacheFailureFallsThrough(t *testing.T) {
	next := &stubAuthenticator{identity: alice}
	cache := newStubIdentityCache()
	cache.err = errors.New("redis down")
	auth := NewCachedAuthenticator(next, cache, time.Minute, zerolog.Nop())

	got, err := auth.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got.ID != alice.ID || next.calls != 1 {
		t.Fatalf("expected peer identity, got %+v after %d calls", got, next.calls)
	}
}
