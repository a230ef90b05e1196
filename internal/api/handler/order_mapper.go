package handler

import (
	"strconv"
	"strings"

	"github.com/shopline/commerce/internal/core/domain"
	"github.com/shopline/commerce/internal/core/ports"
)

// --- Request → Service input ---

func toCreateOrderInput(req createOrderRequest) ports.CreateOrderInput {
	items := make([]ports.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.OrderItemInput{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}
	return ports.CreateOrderInput{Items: items, ShippingAddress: req.ShippingAddress}
}

func toUpdateOrderInput(req updateOrderRequest, ifMatch *int64) ports.UpdateOrderInput {
	return ports.UpdateOrderInput{
		Status:          req.Status,
		ShippingAddress: req.ShippingAddress,
		IfMatch:         ifMatch,
	}
}

// --- Service result → HTTP response ---

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}
	history := make([]statusHistoryResponse, 0, len(o.StatusHistory))
	for _, h := range o.StatusHistory {
		history = append(history, statusHistoryResponse{Status: string(h.Status), Timestamp: h.Timestamp.UTC()})
	}
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		Version:         o.Version,
		StatusHistory:   history,
		CreatedAt:       o.CreatedAt.UTC(),
		UpdatedAt:       o.UpdatedAt.UTC(),
	}
}

func toOrderListResponse(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// --- ETag / If-Match ---

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// parseIfMatch reads an If-Match header. An absent header or "*" yields nil.
// Anything that is not a quoted (optionally weak) version is a precondition failure.
func parseIfMatch(header string) (*int64, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return nil, nil
	}
	header = strings.TrimPrefix(header, "W/")
	if len(header) < 2 || header[0] != '"' || header[len(header)-1] != '"' {
		return nil, domain.ErrPreconditionFailed
	}
	v, err := strconv.ParseInt(header[1:len(header)-1], 10, 64)
	if err != nil {
		return nil, domain.ErrPreconditionFailed
	}
	return &v, nil
}
