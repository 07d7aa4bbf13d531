package domain

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCategory is stored whenever a client supplies a blank category.
const DefaultCategory = "General"

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description" bson:"description"`
	ImageURL    string             `json:"imageUrl" bson:"image_url"`
	Category    string             `json:"category" bson:"category"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ProductFilter is a parsed, validated search filter. Nil price bounds mean
// the bound is absent; text fields are substring-matched case-insensitively.
type ProductFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// ProductUpdate carries the validated fields of a partial update. A nil
// pointer means the field was omitted and must be left untouched; this is
// how an explicitly empty description is told apart from an absent one.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Description *string
	ImageURL    *string
	Category    *string
	Quantity    *int
}

// IsZero reports whether the update touches no fields at all.
func (u ProductUpdate) IsZero() bool {
	return u.Name == nil && u.Price == nil && u.Description == nil &&
		u.ImageURL == nil && u.Category == nil && u.Quantity == nil
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, update ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	ListProducts(ctx context.Context) ([]Product, error)
	FindProducts(ctx context.Context, filter ProductFilter) ([]Product, error)

	// DecrementStock atomically decrements quantity by one, matching the
	// product only while quantity > 0, and returns the post-update record.
	// ErrNotFound means no document satisfied the predicate; the caller
	// disambiguates absence from depletion.
	DecrementStock(ctx context.Context, id primitive.ObjectID) (*Product, error)

	// IncrementStock atomically adds amount to quantity and returns the
	// post-update record.
	IncrementStock(ctx context.Context, id primitive.ObjectID, amount int) (*Product, error)
}

// AssetStore hands a binary image payload to an external asset service and
// yields a publicly resolvable URL.
type AssetStore interface {
	Upload(ctx context.Context, data io.Reader, scope string) (string, error)
}
