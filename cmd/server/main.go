package main

import (
	"context"
	"log"
	"net/http"

	_ "campuseats/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"campuseats/internal/auth"
	"campuseats/internal/cache"
	"campuseats/internal/config"
	"campuseats/internal/db"
	"campuseats/internal/handler"
	"campuseats/internal/model"
	"campuseats/internal/repository"
	"campuseats/internal/router"
	"campuseats/internal/service"
	"campuseats/internal/storage"
)

// @title CampusEats API
// @version 1.0
// @description Crowdsourced free-food-on-campus API with ranked feeds, gone reporting, and moderation-gated posting.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider's JWT.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.Campus{},
		&model.User{},
		&model.FoodPost{},
		&model.Review{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	store, err := storage.NewMinioStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("object storage init: %v", err)
	}
	deleter := storage.NewDeleter(store)

	// Initialize repositories
	campusRepo := repository.NewCampusRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewFoodPostRepository(gormDB)
	reviewRepo := repository.NewReviewRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)

	// Initialize services
	identityCache := auth.NewIdentityCache(cacheClient)
	moderator := service.NewGenerativeModerator(cfg.ModerationURL, cfg.ModerationAPIKey, store)
	userService := service.NewUserService(userRepo, campusRepo, identityCache)
	campusService := service.NewCampusService(campusRepo, cacheClient)
	postService := service.NewPostService(postRepo, reviewRepo, userRepo, campusRepo, moderator, store, deleter)
	reviewService := service.NewReviewService(reviewRepo, postRepo, userRepo, store, deleter)
	notificationService := service.NewNotificationService(notificationRepo)
	geocodeService := service.NewGeocodeService(campusRepo, cfg.GeocodeURL)

	// Initialize handlers
	campusHandler := handler.NewCampusHandler(campusService)
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	uploadHandler := handler.NewUploadHandler(store)
	geocodeHandler := handler.NewGeocodeHandler(geocodeService)

	// Register routes
	router.Register(
		e,
		cfg,
		userService,
		campusHandler,
		userHandler,
		postHandler,
		reviewHandler,
		notificationHandler,
		uploadHandler,
		geocodeHandler,
	)

	if cfg.ModerationAPIKey == "" {
		log.Println("MODERATION_API_KEY not set, moderation gate allows all posts")
	}

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "http://localhost:" + cfg.ServerPort
	}
	log.Printf("Swagger documentation available at: %s/swagger/index.html", swaggerHost)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
