package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweetshop_api/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type mongoUserRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

func NewMongoUserRepository(db *mongo.Database, logger *logrus.Logger) domain.UserRepository {
	return &mongoUserRepository{
		coll: db.Collection(usersCollection),
		log:  logger,
	}
}

// EnsureUserIndexes creates the unique email index the duplicate-registration
// check relies on. Safe to call on every startup.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("could not create unique email index: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warnf("Repository: Attempted to create user with duplicate email: %s", user.Email)
			return nil, fmt.Errorf("user with email '%s': %w", user.Email, domain.ErrAlreadyExists)
		}
		r.log.Errorf("Repository: Failed to create user '%s': %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", domain.ErrStoreUnavailable)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		r.log.Errorf("Repository: Unexpected inserted ID type %T for user '%s'", res.InsertedID, user.Email)
		return nil, fmt.Errorf("could not create user: %w", domain.ErrStoreUnavailable)
	}
	user.ID = oid

	r.log.Infof("Repository: User created successfully with ID: %s, Email: %s", oid.Hex(), user.Email)
	return user, nil
}

func (r *mongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with email '%s': %w", email, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", domain.ErrStoreUnavailable)
	}
	return user, nil
}

func (r *mongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user := &domain.User{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with id %s: %w", id.Hex(), domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get user by ID %s: %v", id.Hex(), err)
		return nil, fmt.Errorf("could not get user by id: %w", domain.ErrStoreUnavailable)
	}
	return user, nil
}
