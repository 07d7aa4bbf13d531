package usecase

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"sweetshop_api/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateProductInput carries raw client input for product creation. Numeric
// fields arrive as strings and are parsed here so malformed values surface
// as InvalidArgument naming the field.
type CreateProductInput struct {
	Name        string
	Price       string
	Description string
	ImageURL    string
	Category    string
	Quantity    string

	// Image, when non-nil, is a binary asset to delegate to the asset store;
	// the resulting URL takes the place of ImageURL.
	Image io.Reader
}

// UpdateProductInput is a partial update: nil means the field was omitted.
// An explicitly empty description is therefore distinguishable from an
// absent one.
type UpdateProductInput struct {
	Name        *string
	Price       *string
	Description *string
	ImageURL    *string
	Category    *string
	Quantity    *string

	Image io.Reader
}

// SearchInput is the raw search filter as received in query parameters.
type SearchInput struct {
	Name     string
	Category string
	MinPrice string
	MaxPrice string
}

type CatalogUseCase interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, input SearchInput) ([]domain.Product, error)
}

type catalogUseCase struct {
	productRepo domain.ProductRepository
	assets      domain.AssetStore
	assetScope  string
	log         *logrus.Logger
}

// NewCatalogUseCase wires the catalog read and write services. assets may be
// nil, in which case requests carrying a binary image fail with UploadFailed.
func NewCatalogUseCase(repo domain.ProductRepository, assets domain.AssetStore, assetScope string, logger *logrus.Logger) CatalogUseCase {
	return &catalogUseCase{
		productRepo: repo,
		assets:      assets,
		assetScope:  assetScope,
		log:         logger,
	}
}

func (uc *catalogUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, fmt.Errorf("product name cannot be empty: %w", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.Description) == "" {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with empty description", input.Name)
		return nil, fmt.Errorf("product description cannot be empty: %w", domain.ErrInvalidArgument)
	}

	price, err := parsePrice(input.Price, "price")
	if err != nil {
		uc.log.Warnf("Use Case: Invalid price '%s' for product '%s'", input.Price, input.Name)
		return nil, err
	}

	quantity := 0
	if strings.TrimSpace(input.Quantity) != "" {
		quantity, err = parseQuantity(input.Quantity)
		if err != nil {
			uc.log.Warnf("Use Case: Invalid quantity '%s' for product '%s'", input.Quantity, input.Name)
			return nil, err
		}
	}

	imageURL, err := uc.resolveImage(ctx, input.Image, input.ImageURL)
	if err != nil {
		return nil, err
	}
	if imageURL == "" {
		uc.log.Warnf("Use Case: No image supplied for product '%s'", input.Name)
		return nil, fmt.Errorf("image required: %w", domain.ErrInvalidArgument)
	}

	product := &domain.Product{
		Name:        input.Name,
		Price:       price,
		Description: input.Description,
		ImageURL:    imageURL,
		Category:    normalizeCategory(input.Category),
		Quantity:    quantity,
	}

	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", input.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %s", created.Name, created.ID.Hex())
	return created, nil
}

func (uc *catalogUseCase) UpdateProduct(ctx context.Context, id primitive.ObjectID, input UpdateProductInput) (*domain.Product, error) {
	// Existence check first so a bad id reports NotFound before any field
	// validation or asset upload is attempted.
	if _, err := uc.productRepo.GetProductByID(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Product ID %s not found for update: %v", id.Hex(), err)
		return nil, err
	}

	update := domain.ProductUpdate{}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			uc.log.Warnf("Use Case: Empty 'name' provided for update ID %s", id.Hex())
			return nil, fmt.Errorf("product name cannot be empty if provided for update: %w", domain.ErrInvalidArgument)
		}
		update.Name = input.Name
	}
	if input.Price != nil {
		price, err := parsePrice(*input.Price, "price")
		if err != nil {
			uc.log.Warnf("Use Case: Invalid 'price' provided for update ID %s", id.Hex())
			return nil, err
		}
		update.Price = &price
	}
	if input.Description != nil {
		// Explicitly empty description replaces the old one.
		update.Description = input.Description
	}
	if input.Quantity != nil {
		quantity, err := parseQuantity(*input.Quantity)
		if err != nil {
			uc.log.Warnf("Use Case: Invalid 'quantity' provided for update ID %s", id.Hex())
			return nil, err
		}
		update.Quantity = &quantity
	}
	if input.Category != nil {
		category := normalizeCategory(*input.Category)
		update.Category = &category
	}

	switch {
	case input.Image != nil:
		imageURL, err := uc.uploadAsset(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		update.ImageURL = &imageURL
	case input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) != "":
		update.ImageURL = input.ImageURL
	}

	updated, err := uc.productRepo.UpdateProduct(ctx, id, update)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed partial update for product ID %s: %v", id.Hex(), err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %s", updated.ID.Hex())
	return updated, nil
}

func (uc *catalogUseCase) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %s: %v", id.Hex(), err)
		return err
	}
	uc.log.Infof("Use Case: Product deleted successfully for ID %s", id.Hex())
	return nil
}

func (uc *catalogUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.productRepo.ListProducts(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, err
	}
	return products, nil
}

func (uc *catalogUseCase) SearchProducts(ctx context.Context, input SearchInput) ([]domain.Product, error) {
	filter := domain.ProductFilter{
		Name:     strings.TrimSpace(input.Name),
		Category: strings.TrimSpace(input.Category),
	}

	hasMin := strings.TrimSpace(input.MinPrice) != ""
	hasMax := strings.TrimSpace(input.MaxPrice) != ""

	if hasMin {
		min, err := parseNumber(input.MinPrice, "minPrice")
		if err != nil {
			uc.log.Warnf("Use Case: Invalid minPrice value '%s'", input.MinPrice)
			return nil, err
		}
		filter.MinPrice = &min
	}
	if hasMax {
		max, err := parseNumber(input.MaxPrice, "maxPrice")
		if err != nil {
			uc.log.Warnf("Use Case: Invalid maxPrice value '%s'", input.MaxPrice)
			return nil, err
		}
		filter.MaxPrice = &max
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		uc.log.Warnf("Use Case: minPrice %f exceeds maxPrice %f", *filter.MinPrice, *filter.MaxPrice)
		return nil, fmt.Errorf("minPrice cannot exceed maxPrice: %w", domain.ErrInvalidArgument)
	}

	products, err := uc.productRepo.FindProducts(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to search products: %v", err)
		return nil, err
	}
	uc.log.Infof("Use Case: Search matched %d products", len(products))
	return products, nil
}

func (uc *catalogUseCase) resolveImage(ctx context.Context, asset io.Reader, directURL string) (string, error) {
	if asset != nil {
		return uc.uploadAsset(ctx, asset)
	}
	return strings.TrimSpace(directURL), nil
}

func (uc *catalogUseCase) uploadAsset(ctx context.Context, asset io.Reader) (string, error) {
	if uc.assets == nil {
		uc.log.Error("Use Case: Image asset supplied but asset storage is not configured")
		return "", fmt.Errorf("asset storage is not configured: %w", domain.ErrUploadFailed)
	}
	url, err := uc.assets.Upload(ctx, asset, uc.assetScope)
	if err != nil {
		uc.log.Errorf("Use Case: Asset upload failed: %v", err)
		return "", fmt.Errorf("could not upload image asset: %w", domain.ErrUploadFailed)
	}
	uc.log.Infof("Use Case: Image asset uploaded, URL: %s", url)
	return url, nil
}

// parseNumber accepts any finite number; search bounds use it directly, so a
// negative bound is a legal (if fruitless) filter rather than an error.
func parseNumber(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid %s value: %w", field, domain.ErrInvalidArgument)
	}
	return value, nil
}

// parsePrice additionally enforces non-negativity for prices being stored.
func parsePrice(raw, field string) (float64, error) {
	value, err := parseNumber(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%s cannot be negative: %w", field, domain.ErrInvalidArgument)
	}
	return value, nil
}

func parseQuantity(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid quantity value: %w", domain.ErrInvalidArgument)
	}
	if value < 0 {
		return 0, fmt.Errorf("quantity cannot be negative: %w", domain.ErrInvalidArgument)
	}
	return value, nil
}

func normalizeCategory(raw string) string {
	category := strings.TrimSpace(raw)
	if category == "" {
		return domain.DefaultCategory
	}
	return category
}
