package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopline/commerce/internal/core/domain"
)

func newPeer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Authenticate_Success(t *testing.T) {
	var gotAuth, gotRequestID, gotPath string
	srv := newPeer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","email":"alice@example.com","full_name":"Alice","created_at":"2026-03-01T12:00:00Z"}`))
	})

	c := NewClient(srv.URL+"/", time.Second, zerolog.Nop())
	ctx := WithRequestID(context.Background(), "req-42")
	identity, err := c.Authenticate(ctx, "tok.en.value")
	require.NoError(t, err)

	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "Alice", identity.FullName)
	assert.Equal(t, "Bearer tok.en.value", gotAuth)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "/users/me", gotPath)
}

func TestClient_Authenticate_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"success":false}`, domain.ErrUnauthenticated},
		{http.StatusForbidden, ``, domain.ErrUnauthenticated},
		{http.StatusInternalServerError, `boom`, domain.ErrUpstreamUnavailable},
		{http.StatusBadGateway, ``, domain.ErrUpstreamUnavailable},
		{http.StatusNotFound, ``, domain.ErrUpstreamUnavailable},
		{http.StatusOK, `not json`, domain.ErrUpstreamUnavailable},
		{http.StatusOK, `{"email":"no-id@example.com"}`, domain.ErrUpstreamUnavailable},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status)+" "+tc.body, func(t *testing.T) {
			srv := newPeer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := NewClient(srv.URL, time.Second, zerolog.Nop()).Authenticate(context.Background(), "tok")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClient_Authenticate_PeerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, zerolog.Nop()).Authenticate(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.False(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestClient_Authenticate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newPeer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond, zerolog.Nop()).Authenticate(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_Authenticate_ContextCancelled(t *testing.T) {
	srv := newPeer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second, zerolog.Nop()).Authenticate(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_Ping(t *testing.T) {
	healthy := newPeer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	assert.NoError(t, NewClient(healthy.URL, time.Second, zerolog.Nop()).Ping(context.Background()))

	failing := newPeer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, NewClient(failing.URL, time.Second, zerolog.Nop()).Ping(context.Background()))
}
