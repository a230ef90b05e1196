package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopline/commerce/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations. Every route runs
// behind the Authenticate middleware.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /orders/createOrder.
//
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /orders/createOrder [post]
func (h *OrderHandler) Create(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.Request().Context(), caller, toCreateOrderInput(req))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/orders/"+order.ID)
	c.Response().Header().Set("ETag", etag(order.Version))
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrder(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set("ETag", etag(order.Version))
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// Update handles PUT /orders/:id.
//
// @Summary      Update an order
// @Description  Changes status and/or shipping address. Status follows pending → confirmed|cancelled, confirmed → delivered|cancelled.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string              true   "Order id"
// @Param        If-Match  header    string              false  "Expected order version, as returned in ETag"
// @Param        body      body      updateOrderRequest  true   "Fields to change"
// @Success      200       {object}  orderResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      409       {object}  ErrorResponse
// @Failure      412       {object}  ErrorResponse
// @Failure      422       {object}  ErrorResponse
// @Failure      503       {object}  ErrorResponse
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ifMatch, err := parseIfMatch(c.Request().Header.Get("If-Match"))
	if err != nil {
		return err
	}

	order, err := h.service.UpdateOrder(c.Request().Context(), caller, c.Param("id"), toUpdateOrderInput(req, ifMatch))
	if err != nil {
		return err
	}

	c.Response().Header().Set("ETag", etag(order.Version))
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// List handles GET /orders/.
//
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(pending, confirmed, cancelled, delivered)
// @Success      200     {array}   orderResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      422     {object}  ErrorResponse
// @Failure      503     {object}  ErrorResponse
// @Router       /orders/ [get]
func (h *OrderHandler) List(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var q listOrdersQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	orders, err := h.service.ListOrders(c.Request().Context(), caller, q.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toOrderListResponse(orders))
}
