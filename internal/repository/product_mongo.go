package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"sweetshop_api/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "sweets"

type mongoProductRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

func NewMongoProductRepository(db *mongo.Database, logger *logrus.Logger) domain.ProductRepository {
	return &mongoProductRepository{
		coll: db.Collection(productsCollection),
		log:  logger,
	}
}

func (r *mongoProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", domain.ErrStoreUnavailable)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		r.log.Errorf("Repository: Unexpected inserted ID type %T for product '%s'", res.InsertedID, product.Name)
		return nil, fmt.Errorf("could not create product: %w", domain.ErrStoreUnavailable)
	}
	product.ID = oid

	r.log.Infof("Repository: Product created successfully with ID: %s, Name: %s", oid.Hex(), product.Name)
	return product, nil
}

func (r *mongoProductRepository) GetProductByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Repository: Product with ID %s not found", id.Hex())
			return nil, fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("could not get product by id: %w", domain.ErrStoreUnavailable)
	}
	return product, nil
}

func (r *mongoProductRepository) UpdateProduct(ctx context.Context, id primitive.ObjectID, update domain.ProductUpdate) (*domain.Product, error) {
	if update.IsZero() {
		r.log.Warnf("Repository: No fields provided for product update ID %s. Returning current product.", id.Hex())
		return r.GetProductByID(ctx, id)
	}

	set := buildUpdateDocument(update)
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	updated := &domain.Product{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Repository: Product with ID %s not found for update", id.Hex())
			return nil, fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to update product ID %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("could not update product: %w", domain.ErrStoreUnavailable)
	}

	r.log.Infof("Repository: Partial update successful for product ID %s", id.Hex())
	return updated, nil
}

func (r *mongoProductRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %s: %v", id.Hex(), err)
		return fmt.Errorf("could not delete product: %w", domain.ErrStoreUnavailable)
	}
	if res.DeletedCount == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %s", id.Hex())
		return fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
	}
	r.log.Infof("Repository: Product deleted successfully with ID: %s", id.Hex())
	return nil
}

func (r *mongoProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return r.findAll(ctx, bson.M{})
}

func (r *mongoProductRepository) FindProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return r.findAll(ctx, buildProductQuery(filter))
}

func (r *mongoProductRepository) findAll(ctx context.Context, query bson.M) ([]domain.Product, error) {
	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to query products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", domain.ErrStoreUnavailable)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		r.log.Errorf("Repository: Failed to decode product documents: %v", err)
		return nil, fmt.Errorf("error reading product data: %w", domain.ErrStoreUnavailable)
	}

	r.log.Infof("Repository: Retrieved %d products", len(products))
	return products, nil
}

// DecrementStock is the one correctness-critical operation: the predicate and
// the decrement must land in a single findOneAndUpdate so two concurrent
// purchases can never both consume the last unit.
func (r *mongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	filter := bson.M{"_id": id, "quantity": bson.M{"$gt": 0}}
	change := bson.M{
		"$inc": bson.M{"quantity": -1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	updated := &domain.Product{}
	err := r.coll.FindOneAndUpdate(ctx, filter, change, opts).Decode(updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the product is missing or its stock is zero; the
			// service layer resolves which with a follow-up lookup.
			return nil, fmt.Errorf("product with id %s and stock available: %w", id.Hex(), domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to decrement stock for product ID %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("could not decrement stock: %w", domain.ErrStoreUnavailable)
	}

	r.log.Infof("Repository: Stock decremented for product ID %s, remaining: %d", id.Hex(), updated.Quantity)
	return updated, nil
}

func (r *mongoProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, amount int) (*domain.Product, error) {
	change := bson.M{
		"$inc": bson.M{"quantity": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	updated := &domain.Product{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, change, opts).Decode(updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Repository: Product with ID %s not found for restock", id.Hex())
			return nil, fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to increment stock for product ID %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("could not increment stock: %w", domain.ErrStoreUnavailable)
	}

	r.log.Infof("Repository: Stock incremented by %d for product ID %s, now: %d", amount, id.Hex(), updated.Quantity)
	return updated, nil
}

// buildProductQuery translates a validated filter into a Mongo query document.
// Text filters become unanchored case-insensitive regexes with the user text
// quoted, so "c++ candy" matches literally.
func buildProductQuery(filter domain.ProductFilter) bson.M {
	query := bson.M{}

	if filter.Name != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Name), Options: "i"}
	}
	if filter.Category != "" {
		query["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Category), Options: "i"}
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}

	return query
}

func buildUpdateDocument(update domain.ProductUpdate) bson.M {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.ImageURL != nil {
		set["image_url"] = *update.ImageURL
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Quantity != nil {
		set["quantity"] = *update.Quantity
	}
	return set
}
