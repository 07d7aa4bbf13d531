package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sweetshop_api/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is returned on successful register/login: the account plus a
// signed bearer token for subsequent requests.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthUseCase interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Identify resolves a bearer token to the account it was issued for.
	// Any parse, signature, expiry or lookup failure yields Unauthorized.
	Identify(ctx context.Context, token string) (*domain.User, error)

	// EnsureAdmin is the idempotent provisioning step: it guarantees an
	// admin account with the given email exists, creating it if absent.
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
}

type authUseCase struct {
	userRepo domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, secret string, tokenTTL time.Duration, logger *logrus.Logger) AuthUseCase {
	return &authUseCase{
		userRepo: repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		uc.log.Warn("Use Case: Registration failed - missing fields")
		return nil, fmt.Errorf("username, email and password are required: %w", domain.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	created, err := uc.userRepo.CreateUser(ctx, user)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	token, err := uc.issueToken(created)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s", created.ID.Hex(), created.Email)
	return &AuthResult{User: created, Token: token}, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s", email)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := uc.issueToken(user)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %s)", email, user.ID.Hex())
	return &AuthResult{User: user, Token: token}, nil
}

func (uc *authUseCase) Identify(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		uc.log.Warnf("Use Case: Token validation failed: %v", err)
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		uc.log.Warnf("Use Case: Token subject is not a valid user ID: %s", claims.Subject)
		return nil, fmt.Errorf("invalid token subject: %w", domain.ErrUnauthorized)
	}

	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Token references deleted user ID %s", userID.Hex())
			return nil, fmt.Errorf("user no longer exists: %w", domain.ErrUnauthorized)
		}
		uc.log.Errorf("Use Case: Failed to load user %s for token: %v", userID.Hex(), err)
		return nil, err
	}

	return user, nil
}

func (uc *authUseCase) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		uc.log.Infof("Use Case: Admin user already exists: %s", email)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		uc.log.Errorf("Use Case: Failed to check for existing admin %s: %v", email, err)
		return nil, err
	}

	if password == "" {
		uc.log.Warn("Use Case: Cannot provision admin - no password configured")
		return nil, fmt.Errorf("admin password is required: %w", domain.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash admin password: %v", err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	admin := &domain.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}

	created, err := uc.userRepo.CreateUser(ctx, admin)
	if err != nil {
		// A concurrent provisioning run may have won the insert; treat the
		// duplicate as success to keep the step idempotent.
		if errors.Is(err, domain.ErrAlreadyExists) {
			uc.log.Infof("Use Case: Admin user created concurrently: %s", email)
			return uc.userRepo.GetUserByEmail(ctx, email)
		}
		uc.log.Errorf("Use Case: Repository failed to create admin %s: %v", email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Admin user provisioned: %s", email)
	return created, nil
}

func (uc *authUseCase) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to sign token for user %s: %v", user.ID.Hex(), err)
		return "", fmt.Errorf("could not issue token: %w", err)
	}
	return signed, nil
}
