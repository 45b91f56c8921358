package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/dukkan-app/dukkan-api/internal/application/service"
	"github.com/dukkan-app/dukkan-api/internal/config"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/cache"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/database"
	"github.com/dukkan-app/dukkan-api/internal/infrastructure/repository"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/handler"
	"github.com/dukkan-app/dukkan-api/internal/presentation/http/routes"
	"github.com/dukkan-app/dukkan-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Expired idempotency keys are dead weight; sweep them periodically
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := idempotencyRepo.DeleteExpired(context.Background()); err != nil {
				log.Printf("Warning: idempotency key cleanup failed: %v", err)
			}
		}
	}()

	// Initialize the analytics cache; fall back to the no-op cache when
	// Redis is disabled or unreachable
	var analyticsCache cache.AnalyticsCache = cache.NoopAnalyticsCache{}
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisAnalyticsCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis unreachable, analytics cache disabled: %v", err)
		} else {
			analyticsCache = redisCache
			defer redisCache.Close()
		}
	}

	// Initialize services
	productService := service.NewProductService(productRepo)
	stockService := service.NewStockService(productRepo)
	orderService := service.NewOrderService(orderRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, analyticsCache)
	analyticsService := service.NewAnalyticsService(
		saleRepo,
		productRepo,
		analyticsCache,
		cfg.Analytics.CacheTTL,
		cfg.Analytics.TopLimit,
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Product:   handler.NewProductHandler(productService, stockService),
		Order:     handler.NewOrderHandler(orderService),
		Sale:      handler.NewSaleHandler(saleService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
