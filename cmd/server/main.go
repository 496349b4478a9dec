// Package main is the entry point for the livecart API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"livecart/internal/domain/auth"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/customer"
	"livecart/internal/domain/finance"
	"livecart/internal/domain/fulfillment"
	"livecart/internal/domain/inventory"
	"livecart/internal/domain/livesession"
	"livecart/internal/domain/order"
	"livecart/internal/domain/policy"
	"livecart/internal/domain/shipment"
	v1 "livecart/internal/infrastructure/http/v1"
	"livecart/internal/infrastructure/storage/postgres"
	"livecart/pkg/logger"
	"livecart/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting livecart server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Repositories ---
	inventoryRepo := postgres.NewInventoryRepo(txManager)
	sessionRepo := postgres.NewLiveSessionRepo(txManager)
	claimRepo := postgres.NewClaimRepo(txManager)
	customerRepo := postgres.NewCustomerRepo(txManager)
	orderRepo := postgres.NewOrderRepo(txManager)
	paymentRepo := postgres.NewPaymentRepo(txManager)
	shipmentRepo := postgres.NewShipmentRepo(txManager)
	financeRepo := postgres.NewFinanceRepo(txManager)

	// --- Policy Engine ---
	policyCfg := policy.DefaultConfig()
	if expr := os.Getenv("POLICY_PAID_EXPR"); expr != "" {
		policyCfg.PaidExpr = expr
	}
	if expr := os.Getenv("POLICY_JOY_RESERVE_EXPR"); expr != "" {
		policyCfg.JoyReserveExpr = expr
	}
	policyEngine, err := policy.New(policyCfg)
	if err != nil {
		log.Fatalw("failed to compile policy predicates", "error", err)
	}

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(mustEnv("JWT_SECRET"))
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(auth.Credentials{
		Username:     mustEnv("MERCHANT_USERNAME"),
		PasswordHash: mustEnv("MERCHANT_PASSWORD_HASH"),
	}, jwtService)

	// --- Numerator ---
	orderNumbers := numerator.NewOrderNumbers(numerator.New(pool))

	// --- Domain services ---
	inventoryService := inventory.NewService(inventoryRepo, txManager, auditStore)
	sessionService := livesession.NewService(sessionRepo)
	orderService := order.NewService(orderRepo, paymentRepo, txManager, auditStore)
	customerService := customer.NewService(customerRepo, orderRepo, claimRepo, policyEngine, txManager, auditStore)
	orderService.SetCustomerStats(customerService)

	fulfillmentService := fulfillment.NewService(
		claimRepo,
		orderRepo,
		orderService,
		inventoryService,
		customerService,
		orderNumbers,
		txManager,
		auditStore,
	)

	claimService := claim.NewService(claimRepo, inventoryService, txManager, auditStore)
	claimService.SetDesyncer(fulfillmentService)

	shipmentService := shipment.NewService(shipmentRepo, orderRepo, orderService, txManager, auditStore)
	financeService := finance.NewService(financeRepo, policyEngine)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool,
		Logger:      log,
		AuthService: authService,
		Inventory:   inventoryService,
		Sessions:    sessionService,
		Claims:      claimService,
		Orders:      orderService,
		Fulfillment: fulfillmentService,
		Shipments:   shipmentService,
		Customers:   customerService,
		Finance:     financeService,
		AuditStore:  auditStore,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
