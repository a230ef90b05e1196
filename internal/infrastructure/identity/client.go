// Package identity is the order service's client for the identity service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopline/commerce/internal/api/metrics"
	"github.com/shopline/commerce/internal/core/domain"
)

const (
	defaultTimeout = 5 * time.Second
	mePath         = "/users/me"
	healthPath     = "/health"
	// maxBodyBytes bounds what we read from the peer.
	maxBodyBytes = 1 << 20
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the inbound request id, forwarded
// to the identity service as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client verifies bearer tokens by asking the identity service who they belong to.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds a client for the identity service at baseURL.
// A non-positive timeout falls back to five seconds.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Authenticate forwards the token to GET /users/me. A 401 or 403 answer is
// domain.ErrUnauthenticated; anything else that is not a usable 200 is
// domain.ErrUpstreamUnavailable.
func (c *Client) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	start := time.Now()
	identity, outcome, err := c.fetchIdentity(ctx, token)
	metrics.PeerVerifyDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return identity, err
}

func (c *Client) fetchIdentity(ctx context.Context, token string) (*domain.Identity, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, nil)
	if err != nil {
		return nil, "upstream_unavailable", fmt.Errorf("%w: build request: %w", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("identity service request failed")
		return nil, "upstream_unavailable", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, "unauthenticated", fmt.Errorf("%w: identity service answered %d", domain.ErrUnauthenticated, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.log.Warn().Int("status", resp.StatusCode).Msg("unexpected identity service status")
		return nil, "upstream_unavailable", fmt.Errorf("%w: identity service answered %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var identity domain.Identity
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&identity); err != nil {
		c.log.Warn().Err(err).Msg("undecodable identity service response")
		return nil, "upstream_unavailable", fmt.Errorf("%w: decode identity: %w", domain.ErrUpstreamUnavailable, err)
	}
	if identity.ID == "" {
		return nil, "upstream_unavailable", fmt.Errorf("%w: identity without id", domain.ErrUpstreamUnavailable)
	}
	return &identity, "authenticated", nil
}

// Ping checks the identity service liveness endpoint. Used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode != http.StatusOK {
		return errors.New("identity service health returned " + resp.Status)
	}
	return nil
}
