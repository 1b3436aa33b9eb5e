package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/Raymond9734/customer-directory-api/internal/config"
	"github.com/Raymond9734/customer-directory-api/internal/db"
	"github.com/Raymond9734/customer-directory-api/internal/handler"
	"github.com/Raymond9734/customer-directory-api/internal/lockout"
	"github.com/Raymond9734/customer-directory-api/internal/metrics"
	"github.com/Raymond9734/customer-directory-api/internal/repository"
	"github.com/Raymond9734/customer-directory-api/internal/service"
	"github.com/Raymond9734/customer-directory-api/internal/token"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting customer directory API server")

	// Load .env if present, then configuration from the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Connect to database
	database, err := db.New(db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	// Connect to the Redis lockout store when configured
	var lockoutStore lockout.Store
	if cfg.Lockout.RedisURL != "" {
		lockoutStore, err = lockout.NewRedisStore(lockout.RedisConfig{
			URL:         cfg.Lockout.RedisURL,
			MaxAttempts: cfg.Lockout.MaxAttempts,
			Window:      cfg.Lockout.Window,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("REDIS_URL not set, login throttling disabled")
	}

	// Initialize collaborators
	tokenService := token.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	hasher := service.NewBcryptHasher()

	customerRepo := repository.NewCustomerRepository(database.DB)

	customerSvc := service.NewCustomerService(
		customerRepo,
		hasher,
		tokenService,
		lockoutStore,
		logger,
	)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerSvc, logger)
	authHandler := handler.NewAuthHandler(customerSvc, logger)
	healthHandler := handler.NewHealthHandler(database.DB, lockoutStore, logger)

	apiMetrics := metrics.New()

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(handler.RequestIDMiddleware)
	r.Use(handler.RecoveryMiddleware(logger))
	r.Use(handler.LoggingMiddleware(logger))
	r.Use(handler.CORSMiddleware)
	r.Use(apiMetrics.Middleware)

	// Register routes
	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", apiMetrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customerHandler.RegisterCustomer)

			// Everything below requires a valid bearer token
			r.Group(func(r chi.Router) {
				r.Use(handler.RequireAuth(tokenService, logger))

				r.Get("/", customerHandler.ListCustomers)
				r.Get("/{id}", customerHandler.GetCustomer)
				r.Put("/{id}", customerHandler.UpdateCustomer)
				r.Delete("/{id}", customerHandler.DeleteCustomer)
			})
		})
	})

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}
