package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/trackflow/tracking-service/internal/api/handler"
	"github.com/trackflow/tracking-service/internal/api/middleware"
	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"

	_ "github.com/trackflow/tracking-service/docs"
)

// RateLimits configures the two request budgets.
type RateLimits struct {
	PublicLimit  int
	PublicWindow time.Duration
	APILimit     int
	APIWindow    time.Duration
}

// Deps holds everything the router wires into handlers.
type Deps struct {
	JWTSecret     string
	Tracking      ports.TrackingService
	Shipments     ports.ShipmentService
	Auth          ports.AuthService
	Notifications ports.NotificationService
	Summarizer    ports.Summarizer
	Shops         ports.ShopRepository
	Carriers      *carrier.Table
	Refresh       handler.RefreshEnqueuer

	// Limiter is optional. Nil disables rate limiting.
	Limiter    ports.RateLimiter
	RateLimits RateLimits

	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Carriers == nil {
		d.Carriers = carrier.Default()
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "tracking",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	trackHandler := handler.NewTrackHandler(d.Tracking, d.Carriers)
	shipmentHandler := handler.NewShipmentHandler(d.Shipments, d.Carriers, d.Refresh)
	carrierHandler := handler.NewCarrierHandler(d.Carriers)
	shopHandler := handler.NewShopHandler(d.Shops)
	summaryHandler := handler.NewSummaryHandler(d.Summarizer)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	var publicLimit, apiLimit echo.MiddlewareFunc = noop, noop
	if d.Limiter != nil {
		publicLimit = middleware.RateLimit(d.Limiter, middleware.RateLimitConfig{
			Scope:  "public",
			Limit:  d.RateLimits.PublicLimit,
			Window: d.RateLimits.PublicWindow,
			Key:    middleware.ByIP,
		}, d.Logger)
		apiLimit = middleware.RateLimit(d.Limiter, middleware.RateLimitConfig{
			Scope:  "api",
			Limit:  d.RateLimits.APILimit,
			Window: d.RateLimits.APIWindow,
			Key:    middleware.ByUser,
		}, d.Logger)
	}

	// --- Health probes and operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public routes ---
	e.GET("/carriers", carrierHandler.List)
	e.GET("/carriers/detect", carrierHandler.Detect)
	e.GET("/shops/:slug", shopHandler.Get, publicLimit)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/track", trackHandler.Track, middleware.OptionalAuth(d.JWTSecret), publicLimit)
	e.POST("/ai/summarize", summaryHandler.Summarize, publicLimit)

	// --- Authenticated API ---
	roles := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)
	v1 := e.Group("/v1")
	v1.POST("/track", trackHandler.TrackAPI, middleware.APIKeyOrJWT(d.JWTSecret, d.Auth), roles, apiLimit)

	jwtOnly := []echo.MiddlewareFunc{middleware.Auth(d.JWTSecret), roles}
	v1.GET("/shipments", shipmentHandler.List, jwtOnly...)
	v1.POST("/shipments/refresh", shipmentHandler.Refresh, jwtOnly...)
	v1.GET("/shipments/:tracking_number", shipmentHandler.Get, jwtOnly...)
	v1.PATCH("/shipments/:tracking_number", shipmentHandler.UpdateLabel, jwtOnly...)
	v1.POST("/notifications/subscribe", notificationHandler.Subscribe, jwtOnly...)
	v1.POST("/api-keys", authHandler.CreateAPIKey, jwtOnly...)

	return e
}

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }
