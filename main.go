package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/hoshichaam/account_backend_go/internal/config"
	"github.com/hoshichaam/account_backend_go/internal/handlers"
	"github.com/hoshichaam/account_backend_go/internal/logger"
	"github.com/hoshichaam/account_backend_go/internal/middleware"
	"github.com/hoshichaam/account_backend_go/internal/services"
	myvalidator "github.com/hoshichaam/account_backend_go/pkg/validator"
)

func main() {
	// 1) Load env (silent jika .env tidak ada)
	cfg := config.Load()
	log := logger.New(cfg)

	// 2) Fail-fast kalau config wajib kosong
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration (cek IDENTITY_URL di .env)")
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET kosong: token sesi hanya di-decode, verifikasi penuh di identity provider")
	}

	// 3) Init dependencies
	v := myvalidator.New()
	identity := services.NewIdentityClient(cfg.IdentityURL, cfg.IdentityTimeout)
	passwordSvc := services.NewPasswordService(identity, v)

	// 4) Init handlers
	accountHandler := handlers.NewAccountHandler(passwordSvc, log)
	healthHandler := handlers.NewHealthHandler(identity, log)

	// 5) Fiber app dengan timeout & proxy aware
	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,

		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies: []string{
			"127.0.0.1", "::1",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
		},
		EnableIPValidation: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	// CORS untuk cookie sesi identity provider
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowCredentials: true,
	}))

	// 6) Routes
	app.Get("/healthz", healthHandler.Live)
	app.Get("/readyz", healthHandler.Ready)

	session := middleware.SessionRequired(cfg.JWTSecret, cfg.SessionCookie, log)

	api := app.Group("/api")
	api.Post("/updatePassword", session, accountHandler.UpdatePassword)

	v1 := api.Group("/v1")
	v1.Post("/account/password", session, accountHandler.UpdatePassword)

	// 7) Server start
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.WithField("identity", cfg.IdentityURL).Infof("Starting server on %s (CORS origins: %s)", addr, cfg.CORSOrigins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Fatal("server listen error")
		}
	}()

	<-quit
	log.Info("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Fatal("server shutdown failed")
	}
	log.Info("Server stopped gracefully.")
}
