package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"sweetshop_api/config"
	"sweetshop_api/internal/delivery"
	"sweetshop_api/internal/domain"
	"sweetshop_api/internal/middleware"
	"sweetshop_api/internal/repository"
	"sweetshop_api/internal/usecase"
	"sweetshop_api/pkg/assets"
	"sweetshop_api/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', falling back to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Sweet Shop API...")

	// --- Database Connection ---
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := db.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Errorf("Failed to disconnect from MongoDB: %v", err)
		}
	}()
	logger.Info("MongoDB connection established.")

	database := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureUserIndexes(connectCtx, database); err != nil {
		logger.Fatalf("FATAL: Failed to ensure user indexes: %v", err)
	}

	// --- Dependency Injection ---
	productRepo := repository.NewMongoProductRepository(database, logger)
	userRepo := repository.NewMongoUserRepository(database, logger)
	logger.Info("Repositories initialized.")

	// assetStore stays a nil interface when Cloudinary is not configured;
	// assigning a typed nil pointer here would defeat the usecase nil check.
	var assetStore domain.AssetStore
	if cfg.CloudinaryURL != "" {
		store, err := assets.NewCloudinaryStore(cfg.CloudinaryURL, logger)
		if err != nil {
			logger.Fatalf("FATAL: Failed to configure asset storage: %v", err)
		}
		assetStore = store
		logger.Info("Asset storage configured.")
	}

	catalogUseCase := usecase.NewCatalogUseCase(productRepo, assetStore, cfg.CloudinaryScope, logger)
	inventoryUseCase := usecase.NewInventoryUseCase(productRepo, logger)
	authUseCase := usecase.NewAuthUseCase(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, logger)
	logger.Info("Use cases initialized.")

	productHandler := delivery.NewProductHandler(catalogUseCase, inventoryUseCase, logger)
	authHandler := delivery.NewAuthHandler(authUseCase, logger)
	logger.Info("Handlers initialized.")

	// --- Router ---
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Sweet Shop API is running")
	})

	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api,
		middleware.Authenticate(authUseCase, logger),
		middleware.RequireAdmin(logger),
	)
	logger.Info("API routes registered.")

	// --- Start Server ---
	logger.Infof("Starting server on port %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
