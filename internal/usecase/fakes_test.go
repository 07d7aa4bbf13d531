package usecase_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"sweetshop_api/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeProductRepo mirrors the store contract in memory: the conditional
// decrement holds the lock across check and write, matching the atomicity
// the Mongo adapter gets from findOneAndUpdate.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*domain.Product
	order    []primitive.ObjectID
	failWith error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]*domain.Product)}
}

func (r *fakeProductRepo) seed(p domain.Product) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	p.ID = id
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[id] = &p
	r.order = append(r.order, id)
	return id
}

func (r *fakeProductRepo) get(id primitive.ObjectID) domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.products[id]
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	stored := *product
	r.products[product.ID] = &stored
	r.order = append(r.order, product.ID)
	return product, nil
}

func (r *fakeProductRepo) GetProductByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, id primitive.ObjectID, update domain.ProductUpdate) (*domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
	}
	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Quantity != nil {
		product.Quantity = *update.Quantity
	}
	product.UpdatedAt = time.Now().UTC()
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
	}
	delete(r.products, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeProductRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	products := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		products = append(products, *r.products[id])
	}
	return products, nil
}

func (r *fakeProductRepo) FindProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []domain.Product{}
	for _, id := range r.order {
		product := r.products[id]
		if filter.Name != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(product.Category), strings.ToLower(filter.Category)) {
			continue
		}
		if filter.MinPrice != nil && product.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && product.Price > *filter.MaxPrice {
			continue
		}
		matched = append(matched, *product)
	}
	return matched, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok || product.Quantity <= 0 {
		return nil, fmt.Errorf("product with id %s and stock available: %w", id.Hex(), domain.ErrNotFound)
	}
	product.Quantity--
	product.UpdatedAt = time.Now().UTC()
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) IncrementStock(_ context.Context, id primitive.ObjectID, amount int) (*domain.Product, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %s: %w", id.Hex(), domain.ErrNotFound)
	}
	product.Quantity += amount
	product.UpdatedAt = time.Now().UTC()
	copied := *product
	return &copied, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf("user with email '%s': %w", user.Email, domain.ErrAlreadyExists)
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user with email '%s': %w", email, domain.ErrNotFound)
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s: %w", id.Hex(), domain.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

// fakeAssetStore records uploads and returns a canned URL or error.
type fakeAssetStore struct {
	url     string
	err     error
	uploads int
}

func (s *fakeAssetStore) Upload(_ context.Context, _ io.Reader, _ string) (string, error) {
	s.uploads++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}
