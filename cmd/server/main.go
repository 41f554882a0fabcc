package main

import (
	"context"
	"log"

	"artexpo-ticketing/config"
	"artexpo-ticketing/internal/auth"
	"artexpo-ticketing/internal/cache"
	"artexpo-ticketing/internal/database"
	"artexpo-ticketing/internal/handler"
	"artexpo-ticketing/internal/queue"
	"artexpo-ticketing/internal/repository"
	"artexpo-ticketing/internal/service"
	"artexpo-ticketing/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const ticketFeedBuffer = 256

func main() {
	// Missing .env is fine in containers where the environment is injected.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	txManager := repository.NewTxManager(pool)
	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	referralRepo := repository.NewReferralRepository(pool)

	catalogCache := cache.NewCatalogCache(rdb)
	ticketFeed := queue.NewTicketFeed(ticketFeedBuffer)

	availabilityWorker := worker.NewAvailabilityWorker(eventRepo, catalogCache, ticketFeed)
	if err := availabilityWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start availability worker: %v", err)
	}

	tokenIssuer := auth.NewTokenIssuer(cfg.JWT)

	accountService := service.NewAccountService(txManager, userRepo, referralRepo, bookingRepo)
	authService := service.NewAuthService(userRepo, tokenIssuer)
	catalogService := service.NewCatalogService(eventRepo, catalogCache)
	bookingService := service.NewBookingService(txManager, eventRepo, userRepo, bookingRepo, ticketFeed)
	purchaseService := service.NewPurchaseService(txManager, bookingRepo, paymentRepo)
	reviewService := service.NewReviewService(txManager, paymentRepo, reviewRepo)
	adminService := service.NewAdminService(
		txManager, eventRepo, bookingRepo, paymentRepo, reviewRepo, userRepo, catalogCache, ticketFeed)

	requireAuth := auth.RequireAuth(tokenIssuer)
	requireAdmin := auth.RequireAdmin()

	router := gin.Default()
	router.Use(handler.RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewAuthHandler(accountService, authService).RegisterRoutes(router, requireAuth)
	handler.NewEventHandler(catalogService).RegisterRoutes(router)
	handler.NewBookingHandler(bookingService, purchaseService).RegisterRoutes(router, requireAuth)
	handler.NewReviewHandler(reviewService).RegisterRoutes(router, requireAuth)
	handler.NewAdminHandler(adminService).RegisterRoutes(router, requireAuth, requireAdmin)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
