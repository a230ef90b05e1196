package ports

import (
	"context"

	"github.com/shopline/commerce/internal/core/domain"
)

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID    string
	Quantity     int
	PricePerUnit float64
}

// CreateOrderInput carries the fields of a new order. The owner is never part of it.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress string
}

// UpdateOrderInput carries optional changes. Nil fields are left untouched.
type UpdateOrderInput struct {
	Status          *string
	ShippingAddress *string
	// IfMatch, when non-nil, must equal the stored version.
	IfMatch *int64
}

// OrderService defines the owner-scoped order use cases.
type OrderService interface {
	CreateOrder(ctx context.Context, caller *domain.Identity, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, caller *domain.Identity, id string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, caller *domain.Identity, id string, input UpdateOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, caller *domain.Identity, status string) ([]*domain.Order, error)
}

// OrderEventPublisher hands order events to the audit pipeline.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent)
}
