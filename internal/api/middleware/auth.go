package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopline/commerce/internal/api/metrics"
	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

const (
	// ContextKeyIdentity is where Authenticate stores the *domain.Identity.
	ContextKeyIdentity = "identity"

	ModeLocal  = "local"
	ModeRemote = "remote"

	bearerPrefix = "Bearer "
)

// BearerToken extracts the token from an Authorization header of the exact
// form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authenticate resolves the bearer token through auth and injects the verified
// identity into the context. mode only labels metrics.
func Authenticate(auth ports.Authenticator, mode string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthVerificationsTotal.WithLabelValues(mode, "missing_credentials").Inc()
				return domain.ErrMissingCredentials
			}

			identity, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AuthVerificationsTotal.WithLabelValues(mode, outcome(err)).Inc()
				return err
			}

			metrics.AuthVerificationsTotal.WithLabelValues(mode, "authenticated").Inc()
			c.Set(ContextKeyIdentity, identity)
			return next(c)
		}
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}
