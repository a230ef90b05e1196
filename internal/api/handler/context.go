package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/shopline/commerce/internal/api/middleware"
	"github.com/shopline/commerce/internal/core/domain"
)

// currentIdentity returns the identity injected by the Authenticate middleware.
// Its absence means the route was mounted without the middleware.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := c.Get(middleware.ContextKeyIdentity).(*domain.Identity)
	if !ok || identity == nil || identity.ID == "" {
		return nil, domain.ErrMissingCredentials
	}
	return identity, nil
}
