package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/luggage-storage-reservation/internal/config"
	"github.com/iliyamo/luggage-storage-reservation/internal/database"
	"github.com/iliyamo/luggage-storage-reservation/internal/gateway"
	"github.com/iliyamo/luggage-storage-reservation/internal/handler"
	"github.com/iliyamo/luggage-storage-reservation/internal/queue"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
	"github.com/iliyamo/luggage-storage-reservation/internal/router"
	"github.com/iliyamo/luggage-storage-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	storages := repository.NewStorageRepo(db)
	webhooks := repository.NewWebhookRepo(db)
	coupons := repository.NewCouponRepo(db)

	allocator := service.NewAllocator(storages)
	issuer := service.NewCouponIssuer(coupons)
	pg := gateway.NewLogOnlyGateway()
	lifecycle := service.NewLifecycle(db, reservations, payments, allocator, issuer, pg)
	reconciler := service.NewReconciler(db, payments, reservations, webhooks, allocator)

	go func() {
		if err := queue.StartLifecycleConsumer(); err != nil {
			log.Printf("lifecycle consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Deps{
		Config:       cfg,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Reservations: handler.NewReservationHandler(lifecycle),
		Storages:     handler.NewStorageHandler(storages),
		Webhooks:     handler.NewWebhookHandler(reconciler),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
