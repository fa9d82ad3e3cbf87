package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"homechef/internal/config"
	"homechef/internal/database"
	"homechef/internal/handlers"
	"homechef/internal/middlewares"
	"homechef/internal/rabbitmq"
	"homechef/internal/redis"
	"homechef/internal/repository"
	"homechef/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize event publisher
	publisher, err := rabbitmq.NewPublisher(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()
	if err := publisher.SetupTopology(); err != nil {
		logger.Fatal("Failed to setup RabbitMQ topology", zap.Error(err))
	}

	// Initialize repositories
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	dishRepo := repository.NewDishRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	paymentRepo := repository.NewPaymentMethodRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	cartService := services.NewCartService(cartRepo, dishRepo, redisClient, cacheTTL, logger)
	checkoutService := services.NewCheckoutService(cartRepo, orderRepo, dishRepo, addressRepo, paymentRepo, userRepo, publisher, redisClient, cacheTTL, logger)
	orderService := services.NewOrderService(orderRepo, publisher, redisClient, cacheTTL, logger)

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(cartService, checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Setup routes
	router := gin.Default()
	router.Use(middlewares.Prometheus())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(middlewares.Auth(cfg.JWTSecret))
	{
		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart/items", cartHandler.AddItem)
		api.POST("/cart/conflict", cartHandler.ResolveConflict)
		api.PUT("/cart/items/:id/quantity", cartHandler.UpdateQuantity)
		api.DELETE("/cart/items/:id", cartHandler.RemoveItem)
		api.DELETE("/cart", cartHandler.Clear)
		api.POST("/checkout", cartHandler.Checkout)

		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		api.PUT("/orders/:id/items/:item_id/price", orderHandler.SetCustomPrice)
	}

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
