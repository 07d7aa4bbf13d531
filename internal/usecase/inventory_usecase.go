package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sweetshop_api/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InventoryUseCase interface {
	PurchaseProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	RestockProduct(ctx context.Context, id primitive.ObjectID, amount string) (*domain.Product, error)
}

type inventoryUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewInventoryUseCase(repo domain.ProductRepository, logger *logrus.Logger) InventoryUseCase {
	return &inventoryUseCase{
		productRepo: repo,
		log:         logger,
	}
}

// PurchaseProduct decrements stock by exactly one unit. The decrement and the
// availability check run as a single conditional update in the store, so
// concurrent purchases against stock S produce at most S successes and the
// stored quantity never goes negative.
func (uc *inventoryUseCase) PurchaseProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product, err := uc.productRepo.DecrementStock(ctx, id)
	if err == nil {
		uc.log.Infof("Use Case: Purchase successful for product ID %s, remaining stock: %d", id.Hex(), product.Quantity)
		return product, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		uc.log.Errorf("Use Case: Repository failed to decrement stock for product ID %s: %v", id.Hex(), err)
		return nil, err
	}

	// The conditional update matched nothing: either the product is gone or
	// its stock is depleted. A lookup on this rare path tells them apart.
	if _, getErr := uc.productRepo.GetProductByID(ctx, id); getErr != nil {
		uc.log.Warnf("Use Case: Purchase attempted on nonexistent product ID %s", id.Hex())
		return nil, getErr
	}

	uc.log.Warnf("Use Case: Purchase attempted on out-of-stock product ID %s", id.Hex())
	return nil, fmt.Errorf("product with id %s is out of stock: %w", id.Hex(), domain.ErrOutOfStock)
}

// RestockProduct adds amount units of stock. The amount arrives as a raw
// string and must parse to an integer greater than zero.
func (uc *inventoryUseCase) RestockProduct(ctx context.Context, id primitive.ObjectID, amount string) (*domain.Product, error) {
	value, err := strconv.Atoi(strings.TrimSpace(amount))
	if err != nil {
		uc.log.Warnf("Use Case: Invalid restock quantity '%s' for product ID %s", amount, id.Hex())
		return nil, fmt.Errorf("invalid restock quantity value: %w", domain.ErrInvalidArgument)
	}
	if value <= 0 {
		uc.log.Warnf("Use Case: Non-positive restock quantity %d for product ID %s", value, id.Hex())
		return nil, fmt.Errorf("restock quantity must be greater than zero: %w", domain.ErrInvalidArgument)
	}

	product, err := uc.productRepo.IncrementStock(ctx, id, value)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to restock product ID %s: %v", id.Hex(), err)
		return nil, err
	}

	uc.log.Infof("Use Case: Restocked product ID %s by %d, stock now: %d", id.Hex(), value, product.Quantity)
	return product, nil
}
