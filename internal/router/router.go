package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/luggage-storage-reservation/internal/config"
	"github.com/iliyamo/luggage-storage-reservation/internal/handler"
	"github.com/iliyamo/luggage-storage-reservation/internal/middleware"
)

// Deps bundles everything the routes need.
type Deps struct {
	Config       config.Config
	Redis        *redis.Client
	RateLimit    config.RateLimitConfig
	Reservations *handler.ReservationHandler
	Storages     *handler.StorageHandler
	Webhooks     *handler.WebhookHandler
}

// RegisterRoutes wires the HTTP surface. Webhooks stay outside the JWT
// group: the gateway authenticates by configuration, not by bearer token.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())

	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	e.GET("/healthz", handler.Health)
	e.POST("/v1/webhooks/payment", d.Webhooks.HandleGatewayEvent, limiter)

	v1 := e.Group("/v1", middleware.JWTAuth(d.Config.JWTSecret), limiter)

	v1.POST("/reservations", d.Reservations.Create)
	v1.GET("/reservations", d.Reservations.List)
	v1.GET("/reservations/:id", d.Reservations.Get)
	v1.POST("/reservations/:id/approve", d.Reservations.Approve)
	v1.POST("/reservations/:id/reject", d.Reservations.Reject)
	v1.POST("/reservations/:id/cancel", d.Reservations.Cancel)
	v1.POST("/reservations/:id/checkin", d.Reservations.CheckIn)
	v1.POST("/reservations/:id/checkout", d.Reservations.CheckOut)
	v1.PATCH("/reservations/:id/status", d.Reservations.SetStatus)

	v1.GET("/storages", d.Storages.List)
}
