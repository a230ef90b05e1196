package ports

import (
	"context"

	"github.com/shopline/commerce/internal/core/domain"
)

// UserRepository defines the identity store operations.
// Lookups return domain.ErrUserNotFound when no record matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
