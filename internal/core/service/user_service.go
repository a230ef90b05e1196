package service

import (
	"context"

	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

// UserService serves read-only user lookups.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetUser returns the public projection of the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.Identity, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}
