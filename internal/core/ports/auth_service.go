package ports

import (
	"context"

	"github.com/shopline/commerce/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

// AccessToken is returned by a successful login.
type AccessToken struct {
	Token     string
	TokenType string
}

// Authenticator turns a bearer token into a verified identity.
// Failures are domain.ErrUnauthenticated or domain.ErrUpstreamUnavailable.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// AuthService covers registration, login and local token verification.
type AuthService interface {
	Authenticator
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*AccessToken, error)
}

// UserService exposes read access to user records.
type UserService interface {
	GetUser(ctx context.Context, id string) (*domain.Identity, error)
}
