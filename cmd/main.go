package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"variants-service/internal/config"
	"variants-service/internal/events"
	"variants-service/internal/handlers"
	"variants-service/internal/middleware"
	"variants-service/internal/repository"
)

// @title Variants Management API
// @version 1.0.0
// @description Product variant catalog and storefront selection resolution service with multi-tenant support
// @termsOfService http://swagger.io/terms/

// @contact.name Variants API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (catalog caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repository
	variantsRepo := repository.NewVariantsRepository(db, redisClient)

	// Initialize event publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	if os.Getenv("NATS_URL") != "" {
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize handlers
	variantsHandler := handlers.NewVariantsHandler(variantsRepo, eventsPublisher, logger, cfg)
	attributesHandler := handlers.NewAttributesHandler(variantsRepo, cfg)
	exportHandler := handlers.NewExportHandler(variantsRepo)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// Admin API routes
	api := router.Group("/api/v1")
	api.Use(middleware.TenantMiddleware())
	{
		attributes := api.Group("/attributes")
		{
			attributes.GET("", attributesHandler.ListAttributes)
			attributes.GET("/:id", attributesHandler.GetAttribute)
			attributes.POST("", attributesHandler.CreateAttribute)
			attributes.PUT("/:id", attributesHandler.UpdateAttribute)
			attributes.DELETE("/:id", attributesHandler.DeleteAttribute)

			attributes.POST("/:id/values", attributesHandler.CreateAttributeValue)
			attributes.PUT("/:id/values/:valueId", attributesHandler.UpdateAttributeValue)
			attributes.DELETE("/:id/values/:valueId", attributesHandler.DeleteAttributeValue)
		}

		products := api.Group("/products")
		{
			products.GET("/:id/variants", variantsHandler.ListVariants)
			products.POST("/:id/variants", variantsHandler.CreateVariant)
			products.PUT("/:id/variants/:variantId", variantsHandler.UpdateVariant)
			products.PUT("/:id/variants/:variantId/inventory", variantsHandler.UpdateVariantInventory)
			products.DELETE("/:id/variants/:variantId", variantsHandler.DeleteVariant)
			products.GET("/:id/variants/export", exportHandler.ExportVariantMatrix)
		}
	}

	// =============================================================================
	// PUBLIC STOREFRONT ENDPOINTS (no auth required, only tenant context)
	// These endpoints are for public storefronts to browse and resolve variants
	// =============================================================================
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware())
	{
		storefront.GET("/products/:id/variants", variantsHandler.GetVariantCatalog)
		storefront.POST("/products/:id/selection", variantsHandler.ResolveSelection)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Variants service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down variants-service...")
}
