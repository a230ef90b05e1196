package handler

import "time"

// --- Request / Response types ---

type orderItemRequest struct {
	ProductID    string  `json:"product_id"     validate:"required"`
	Quantity     int     `json:"quantity"       validate:"gt=0"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gt=0"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"            validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
}

type updateOrderRequest struct {
	Status          *string `json:"status,omitempty"           validate:"omitempty,oneof=pending confirmed cancelled delivered"`
	ShippingAddress *string `json:"shipping_address,omitempty" validate:"omitempty,min=1"`
}

type listOrdersQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending confirmed cancelled delivered"`
}

type orderItemResponse struct {
	ProductID    string  `json:"product_id"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
}

type statusHistoryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type orderResponse struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	Items           []orderItemResponse     `json:"items"`
	ShippingAddress string                  `json:"shipping_address"`
	Status          string                  `json:"status"`
	TotalAmount     float64                 `json:"total_amount"`
	Version         int64                   `json:"version"`
	StatusHistory   []statusHistoryResponse `json:"status_history"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}
