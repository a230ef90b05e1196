package ports

import (
	"context"

	"github.com/shopline/commerce/internal/core/domain"
)

// ListOrdersFilter carries query parameters for listing orders.
// UserID is always set by the service layer.
type ListOrdersFilter struct {
	UserID string
	Status domain.OrderStatus // optional
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create stores a new order and assigns its ID.
	Create(ctx context.Context, order *domain.Order) error
	// FindByID returns the order only when it belongs to userID, otherwise
	// domain.ErrOrderNotFound.
	FindByID(ctx context.Context, id, userID string) (*domain.Order, error)
	// Update replaces the mutable fields of order when the stored version equals
	// expectedVersion, and stores order.Version as the new version. A version
	// mismatch returns domain.ErrVersionConflict.
	Update(ctx context.Context, order *domain.Order, expectedVersion int64) error
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, error)
}

// OrderEventRepository persists order audit events.
type OrderEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.OrderEvent) error
}
