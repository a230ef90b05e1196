package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCancelled OrderStatus = "cancelled"
	StatusDelivered OrderStatus = "delivered"
)

// validTransitions defines the allowed state machine transitions.
// Delivered and cancelled are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID    string  `json:"product_id" bson:"product_id"`
	Quantity     int     `json:"quantity" bson:"quantity"`
	PricePerUnit float64 `json:"price_per_unit" bson:"price_per_unit"`
}

// Subtotal is quantity times unit price.
func (i OrderItem) Subtotal() float64 {
	return i.PricePerUnit * float64(i.Quantity)
}

// StatusHistoryEntry records a single status change on an order.
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status" bson:"status"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}

// Order is owned by exactly one user. UserID is set at creation and never changes.
type Order struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	Items           []OrderItem          `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
	Status          OrderStatus          `json:"status"`
	TotalAmount     float64              `json:"total_amount"`
	Version         int64                `json:"version"`
	StatusHistory   []StatusHistoryEntry `json:"status_history"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// TotalAmount sums the item subtotals.
func TotalAmount(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// OwnedBy reports whether the order belongs to userID.
func (o *Order) OwnedBy(userID string) bool {
	return userID != "" && o.UserID == userID
}
