// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"livecart/internal/domain/auth"
	"livecart/internal/domain/claim"
	"livecart/internal/domain/customer"
	"livecart/internal/domain/finance"
	"livecart/internal/domain/fulfillment"
	"livecart/internal/domain/inventory"
	"livecart/internal/domain/livesession"
	"livecart/internal/domain/order"
	"livecart/internal/domain/shipment"
	"livecart/internal/infrastructure/http/v1/handlers"
	"livecart/internal/infrastructure/http/v1/middleware"
	"livecart/internal/infrastructure/storage/postgres"
	"livecart/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	AuthService *auth.Service

	Inventory   *inventory.Service
	Sessions    *livesession.Service
	Claims      *claim.Service
	Orders      *order.Service
	Fulfillment *fulfillment.Service
	Shipments   *shipment.Service
	Customers   *customer.Service
	Finance     *finance.Service

	AuditStore *postgres.AuditStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	apiV1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		apiV1.POST("/auth/login", authHandler.Login)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))

		inventoryHandler := handlers.NewInventoryHandler(base, cfg.Inventory)
		items := protected.Group("/inventory/items")
		{
			items.POST("", inventoryHandler.Create)
			items.GET("", inventoryHandler.List)
			items.GET("/low-stock", inventoryHandler.LowStock)
			items.GET("/:id", inventoryHandler.Get)
			items.PUT("/:id", inventoryHandler.Update)
			items.POST("/:id/adjust", inventoryHandler.AdjustStock)
		}

		sessionHandler := handlers.NewSessionHandler(base, cfg.Sessions)
		claimHandler := handlers.NewClaimHandler(base, cfg.Claims)
		fulfillmentHandler := handlers.NewFulfillmentHandler(base, cfg.Fulfillment)
		sessions := protected.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Create)
			sessions.GET("", sessionHandler.List)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.POST("/:id/start", sessionHandler.Start)
			sessions.POST("/:id/end", sessionHandler.End)

			sessions.POST("/:id/claims", claimHandler.Import)
			sessions.GET("/:id/claims", claimHandler.ListBySession)

			sessions.POST("/:id/build-orders", fulfillmentHandler.Build)
			sessions.POST("/:id/sync-orders", fulfillmentHandler.Sync)
		}

		protected.PUT("/claims/:id/status", claimHandler.SetStatus)

		orderHandler := handlers.NewOrderHandler(base, cfg.Orders)
		shipmentHandler := handlers.NewShipmentHandler(base, cfg.Shipments)
		orders := protected.Group("/orders")
		{
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.PUT("/:id/fees", orderHandler.UpdateFees)
			orders.PUT("/:id/status", orderHandler.SetStatus)
			orders.POST("/:id/recalculate", orderHandler.Recalculate)
			orders.POST("/:id/payments", orderHandler.RecordPayment)

			orders.PUT("/:id/shipment", shipmentHandler.Upsert)
			orders.GET("/:id/shipment", shipmentHandler.GetByOrder)
		}

		protected.POST("/payments/:id/void", orderHandler.VoidPayment)

		shipments := protected.Group("/shipments")
		{
			shipments.GET("", shipmentHandler.List)
			shipments.PUT("/:id/status", shipmentHandler.SetStatus)
		}

		customerHandler := handlers.NewCustomerHandler(base, cfg.Customers)
		customers := protected.Group("/customers")
		{
			customers.GET("", customerHandler.List)
			customers.GET("/:id", customerHandler.Get)
			customers.PUT("/:id", customerHandler.Update)
			customers.POST("/:id/recompute", customerHandler.RecomputeStats)
		}

		financeHandler := handlers.NewFinanceHandler(base, cfg.Finance)
		reports := protected.Group("/finance")
		{
			reports.GET("/snapshot", financeHandler.Snapshot)
			reports.GET("/series", financeHandler.Series)
		}

		auditHandler := handlers.NewAuditHandler(base, cfg.AuditStore)
		protected.GET("/audit/:entityType/:id", auditHandler.ListByEntity)
	}

	return router
}
