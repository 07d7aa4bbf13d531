// Command seed provisions a Sweet Shop deployment: it guarantees the admin
// account exists and, when the catalog is empty, loads a starter set of
// products. Safe to run any number of times.
package main

import (
	"context"
	"os"
	"time"

	"sweetshop_api/config"
	"sweetshop_api/internal/domain"
	"sweetshop_api/internal/repository"
	"sweetshop_api/internal/usecase"
	"sweetshop_api/pkg/db"

	"github.com/sirupsen/logrus"
)

var starterCatalog = []domain.Product{
	{
		Name:        "Chocolate Truffle",
		Price:       2.50,
		Description: "Rich dark chocolate ganache coated in cocoa powder.",
		ImageURL:    "https://images.unsplash.com/photo-1548907040-4baa42d10919?auto=format&fit=crop&w=800&q=80",
		Category:    "Chocolate",
		Quantity:    50,
	},
	{
		Name:        "Macarons",
		Price:       15.00,
		Description: "Assorted french macarons with various fillings.",
		ImageURL:    "https://images.unsplash.com/photo-1569864358642-9d1684040f43?auto=format&fit=crop&w=800&q=80",
		Category:    "Pastry",
		Quantity:    30,
	},
	{
		Name:        "Strawberry Cheesecake",
		Price:       4.50,
		Description: "Creamy cheesecake with fresh strawberry topping.",
		ImageURL:    "https://images.unsplash.com/photo-1565958011703-44f9829ba187?auto=format&fit=crop&w=800&q=80",
		Category:    "Cheesecake",
		Quantity:    20,
	},
	{
		Name:        "Glazed Donuts",
		Price:       1.50,
		Description: "Classic fluffy donuts with sugar glaze.",
		ImageURL:    "https://images.unsplash.com/photo-1551024709-8f23befc6f87?auto=format&fit=crop&w=800&q=80",
		Category:    "Donut",
		Quantity:    100,
	},
	{
		Name:        "Red Velvet Cupcake",
		Price:       3.00,
		Description: "Moist red velvet cake with cream cheese frosting.",
		ImageURL:    "https://images.unsplash.com/photo-1614707267537-b85aaf00c4b7?auto=format&fit=crop&w=800&q=80",
		Category:    "Cupcake",
		Quantity:    45,
	},
	{
		Name:        "Lemon Tart",
		Price:       3.50,
		Description: "Zesty lemon curd in a buttery pastry shell.",
		ImageURL:    "https://images.unsplash.com/photo-1519915028121-7d3463d20b13?auto=format&fit=crop&w=800&q=80",
		Category:    "Tart",
		Quantity:    15,
	},
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	logger.Info("MongoDB connection established.")

	database := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureUserIndexes(ctx, database); err != nil {
		logger.Fatalf("Failed to ensure user indexes: %v", err)
	}

	userRepo := repository.NewMongoUserRepository(database, logger)
	productRepo := repository.NewMongoProductRepository(database, logger)
	authUseCase := usecase.NewAuthUseCase(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, logger)

	admin, err := authUseCase.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Fatalf("Failed to provision admin account: %v", err)
	}
	logger.Infof("Admin account ready: %s", admin.Email)

	existing, err := productRepo.ListProducts(ctx)
	if err != nil {
		logger.Fatalf("Failed to inspect catalog: %v", err)
	}
	if len(existing) > 0 {
		logger.Infof("Catalog already holds %d products, skipping starter data", len(existing))
		return
	}

	for i := range starterCatalog {
		product := starterCatalog[i]
		if _, err := productRepo.CreateProduct(ctx, &product); err != nil {
			logger.Fatalf("Failed to seed product '%s': %v", product.Name, err)
		}
	}
	logger.Infof("Seeded %d starter products", len(starterCatalog))
}
