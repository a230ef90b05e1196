package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/shopline/commerce/internal/api/handler"
	"github.com/shopline/commerce/internal/api/middleware"
	"github.com/shopline/commerce/internal/core/ports"
	"github.com/shopline/commerce/internal/infrastructure/identity"
)

// IdentityDeps are the collaborators of the identity service router.
type IdentityDeps struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Readiness     map[string]handler.Pinger
	Logger        zerolog.Logger
	EnableSwagger bool
}

// OrderDeps are the collaborators of the order service router.
type OrderDeps struct {
	Orders        ports.OrderService
	Authenticator ports.Authenticator
	Readiness     map[string]handler.Pinger
	Logger        zerolog.Logger
	EnableSwagger bool
}

// NewIdentityRouter builds the identity service. Tokens are verified locally.
func NewIdentityRouter(deps IdentityDeps) *echo.Echo {
	e := newEcho(deps.Logger, deps.Readiness, deps.EnableSwagger, "identity")

	users := handler.NewUserHandler(deps.Auth, deps.Users)
	requireAuth := middleware.Authenticate(deps.Auth, middleware.ModeLocal)

	e.POST("/users/createUser", users.CreateUser)
	e.POST("/token", users.Token)
	e.GET("/users/me", users.Me, requireAuth)
	e.GET("/users/:id", users.GetUser, requireAuth)

	return e
}

// NewOrderRouter builds the order service. Every order route resolves the
// caller through the identity service before the handler runs.
func NewOrderRouter(deps OrderDeps) *echo.Echo {
	e := newEcho(deps.Logger, deps.Readiness, deps.EnableSwagger, "orders")

	orders := handler.NewOrderHandler(deps.Orders)
	g := e.Group("/orders", middleware.Authenticate(deps.Authenticator, middleware.ModeRemote))

	g.POST("/createOrder", orders.Create)
	g.GET("/:id", orders.Get)
	g.PUT("/:id", orders.Update)
	g.GET("/", orders.List)
	g.GET("", orders.List)

	return e
}

func newEcho(log zerolog.Logger, readiness map[string]handler.Pinger, swagger bool, docsInstance string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(propagateRequestID)
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORS())

	// --- Operational routes (no auth required) ---
	health := handler.NewHealthHandler(readiness)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if swagger {
		e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(docsInstance)))
	}

	return e
}

// propagateRequestID makes the request id available to outbound peer calls.
func propagateRequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		if id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(identity.WithRequestID(req.Context(), id)))
		}
		return next(c)
	}
}
