package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"dstore-svc/cache"
	"dstore-svc/config"
	"dstore-svc/database"
	"dstore-svc/handlers"
	"dstore-svc/kafka"
	"dstore-svc/middleware"
	"dstore-svc/payment"
	"dstore-svc/service"
	"dstore-svc/store"
)

const serviceName = "dstore-svc"

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		cancel()
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		cancel()
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}
	cancel()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(ctx)
	}()

	// Redis is an optional accelerator; the catalog works without it.
	rdb, err := cache.InitRedis(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, logger)
	if err != nil {
		logger.Warn("Redis unavailable, product cache disabled", zap.Error(err))
		rdb = nil
	}

	// Kafka is optional too; order events are best-effort.
	producer, err := kafka.InitProducer(cfg.KafkaBroker, logger)
	if err != nil {
		logger.Warn("Kafka unavailable, order events disabled", zap.Error(err))
		producer = nil
	} else {
		defer producer.Close()
	}

	// Payment provider is only wired when credentials are present.
	var provider payment.Provider
	if cfg.PayPalClientID != "" && cfg.PayPalSecret != "" {
		pp, err := payment.NewPayPalProvider(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalLive, logger)
		if err != nil {
			logger.Fatal("Failed to initialize PayPal client", zap.Error(err))
		}
		provider = pp
	} else {
		logger.Warn("PayPal credentials missing, payment endpoints disabled")
	}

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing(serviceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	// Stores and workflows
	users := store.NewUserStore(db)
	products := store.NewProductStore(db)
	carts := store.NewCartStore(db)
	orders := store.NewOrderStore(db)

	catalog := service.NewCatalog(products, rdb, logger)
	cartSvc := service.NewCartService(carts, catalog, logger)
	checkoutSvc := service.NewCheckoutService(carts, catalog, provider, logger)
	orderSvc := service.NewOrderService(orders, carts, producer, cfg.KafkaTopic, logger)

	userHandler := handlers.NewUserHandler(users, cartSvc, cfg.JWTSecret, logger)
	productHandler := handlers.NewProductHandler(products, catalog, logger)
	cartHandler := handlers.NewCartHandler(cartSvc, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc, logger)
	orderHandler := handlers.NewOrderHandler(orderSvc, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Dstore"})
	})
	router.GET("/health", handlers.Health)
	router.GET("/metrics", middleware.PrometheusHandler())

	router.POST("/auth/login", userHandler.Login)
	router.POST("/users", userHandler.Register)

	router.GET("/products", productHandler.GetProducts)
	router.GET("/products/search", productHandler.SearchProducts)
	router.GET("/products/:id", productHandler.GetProduct)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/users/me", userHandler.GetMe)
		protected.PUT("/users/:userId", userHandler.UpdateProfile)

		protected.PATCH("/products/update/stock/:id", productHandler.UpdateStock)

		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PATCH("/cart/update", cartHandler.UpdateCartItem)
		protected.DELETE("/cart", cartHandler.RemoveCartItem)

		protected.POST("/checkout", checkoutHandler.Review)
		protected.POST("/checkout/orders", checkoutHandler.CreatePayPalOrder)
		protected.POST("/checkout/orders/:orderId/capture", checkoutHandler.CapturePayPalOrder)

		protected.POST("/orders/create/:orderId", orderHandler.PlaceOrder)
		protected.GET("/orders/completed", orderHandler.ListOrders)

		admin := protected.Group("/")
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("/products", productHandler.CreateProduct)
			admin.PATCH("/products/:id", productHandler.UpdateProduct)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Dstore service started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
