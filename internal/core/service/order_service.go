package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopline/commerce/internal/api/metrics"
	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

// OrderService applies the ownership gate and the status state machine on top
// of the order repository.
type OrderService struct {
	repo   ports.OrderRepository
	events ports.OrderEventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewOrderService wires the service. events may be nil, in which case no audit
// events are emitted.
func NewOrderService(repo ports.OrderRepository, events ports.OrderEventPublisher, logger zerolog.Logger) *OrderService {
	return &OrderService{repo: repo, events: events, logger: logger, now: time.Now}
}

func callerID(caller *domain.Identity) (string, error) {
	if caller == nil || caller.ID == "" {
		return "", domain.ErrUnauthenticated
	}
	return caller.ID, nil
}

// CreateOrder stores a new pending order owned by the caller.
func (s *OrderService) CreateOrder(ctx context.Context, caller *domain.Identity, input ports.CreateOrderInput) (*domain.Order, error) {
	userID, err := callerID(caller)
	if err != nil {
		return nil, err
	}

	items, err := toOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		return nil, domain.NewValidationError("shipping_address", "field required")
	}

	now := s.now().UTC()
	order := &domain.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: address,
		Status:          domain.StatusPending,
		TotalAmount:     domain.TotalAmount(items),
		Version:         1,
		StatusHistory:   []domain.StatusHistoryEntry{{Status: domain.StatusPending, Timestamp: now}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create order")
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info().Str("order_id", order.ID).Str("user_id", userID).Msg("order created")
	s.publish(ctx, order, domain.OrderEventCreated)
	return order, nil
}

func toOrderItems(in []ports.OrderItemInput) ([]domain.OrderItem, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("items", "at least one item is required")
	}
	var violations []domain.FieldViolation
	items := make([]domain.OrderItem, 0, len(in))
	for i, it := range in {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(it.ProductID) == "" {
			violations = append(violations, domain.FieldViolation{Field: prefix + "product_id", Message: "field required"})
		}
		if it.Quantity <= 0 {
			violations = append(violations, domain.FieldViolation{Field: prefix + "quantity", Message: "must be greater than 0"})
		}
		if it.PricePerUnit <= 0 {
			violations = append(violations, domain.FieldViolation{Field: prefix + "price_per_unit", Message: "must be greater than 0"})
		}
		items = append(items, domain.OrderItem{
			ProductID:    strings.TrimSpace(it.ProductID),
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Fields: violations}
	}
	return items, nil
}

// GetOrder returns the order only if the caller owns it.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.Identity, id string) (*domain.Order, error) {
	userID, err := callerID(caller)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id, userID)
}

// UpdateOrder changes status and/or shipping address of an owned order.
// The stored version guards against concurrent writers.
func (s *OrderService) UpdateOrder(ctx context.Context, caller *domain.Identity, id string, input ports.UpdateOrderInput) (*domain.Order, error) {
	userID, err := callerID(caller)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if input.IfMatch != nil && *input.IfMatch != order.Version {
		return nil, domain.ErrPreconditionFailed
	}

	now := s.now().UTC()
	from := order.Status
	statusChanged := false
	addressChanged := false

	if input.Status != nil {
		next := domain.OrderStatus(strings.TrimSpace(*input.Status))
		if !next.Valid() {
			return nil, domain.NewValidationError("status", "must be one of pending, confirmed, cancelled, delivered")
		}
		if next != order.Status {
			if !order.Status.CanTransitionTo(next) {
				return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, order.Status, next)
			}
			order.Status = next
			order.StatusHistory = append(order.StatusHistory, domain.StatusHistoryEntry{Status: next, Timestamp: now})
			statusChanged = true
		}
	}

	if input.ShippingAddress != nil {
		address := strings.TrimSpace(*input.ShippingAddress)
		if address == "" {
			return nil, domain.NewValidationError("shipping_address", "must not be empty")
		}
		if address != order.ShippingAddress {
			order.ShippingAddress = address
			addressChanged = true
		}
	}

	if !statusChanged && !addressChanged {
		return order, nil
	}

	expected := order.Version
	order.Version = expected + 1
	order.UpdatedAt = now
	if err := s.repo.Update(ctx, order, expected); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to update order")
		return nil, err
	}

	if statusChanged {
		metrics.OrderStatusTransitionsTotal.WithLabelValues(string(from), string(order.Status)).Inc()
		s.logger.Info().Str("order_id", order.ID).Str("from", string(from)).Str("to", string(order.Status)).Msg("order status changed")
		s.publish(ctx, order, domain.OrderEventStatusChanged)
	}
	if addressChanged {
		s.publish(ctx, order, domain.OrderEventAddressChanged)
	}
	return order, nil
}

// ListOrders returns the caller's orders, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, caller *domain.Identity, status string) ([]*domain.Order, error) {
	userID, err := callerID(caller)
	if err != nil {
		return nil, err
	}
	filter := ports.ListOrdersFilter{UserID: userID}
	if status = strings.TrimSpace(status); status != "" {
		st := domain.OrderStatus(status)
		if !st.Valid() {
			return nil, domain.NewValidationError("status", "must be one of pending, confirmed, cancelled, delivered")
		}
		filter.Status = st
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) publish(ctx context.Context, order *domain.Order, typ domain.OrderEventType) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Type:       typ,
		Status:     order.Status,
		OccurredAt: order.UpdatedAt,
	})
}
