package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/thestylist/booking-api/internal/config"
	"github.com/thestylist/booking-api/internal/database"
	"github.com/thestylist/booking-api/internal/handler"
	"github.com/thestylist/booking-api/internal/middleware"
	"github.com/thestylist/booking-api/internal/payment"
	"github.com/thestylist/booking-api/internal/queue"
	"github.com/thestylist/booking-api/internal/repository"
	"github.com/thestylist/booking-api/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	catalog := repository.NewCatalogRepo(db)
	appointments := repository.NewAppointmentRepo(db)

	var paystack *payment.Paystack
	if cfg.PaystackSecretKey != "" {
		paystack = payment.NewPaystack(cfg.PaystackSecretKey)
	}
	var stripe *payment.Stripe
	if cfg.StripeSecretKey != "" {
		stripe = payment.NewStripe(cfg.StripeSecretKey)
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(catalog)
	apptH := handler.NewAppointmentHandler(appointments, catalog)
	payH := handler.NewPaymentHandler(cfg, appointments, paystack, stripe)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, apptH, cacheMW)
	router.RegisterCustomer(e, apptH, payH, cfg.JWTSecret)
	router.RegisterAdmin(e, apptH, cfg.JWTSecret)

	// Notification consumer runs for the life of the process, reconnecting
	// on broker failures.
	go func() {
		if err := queue.StartAppointmentConsumer(); err != nil {
			log.Printf("appointment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
