package domain

import "time"

// OrderEventType names what happened to an order.
type OrderEventType string

const (
	OrderEventCreated        OrderEventType = "created"
	OrderEventStatusChanged  OrderEventType = "status_changed"
	OrderEventAddressChanged OrderEventType = "address_changed"
)

// OrderEvent is an audit record of an order mutation.
type OrderEvent struct {
	OrderID    string
	UserID     string
	Type       OrderEventType
	Status     OrderStatus
	OccurredAt time.Time
}
