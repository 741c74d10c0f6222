// Package users provides database operations for token identities.
//
// Only the SHA-256 hash of a token is stored; the plain token is returned
// once from CreateUser.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, token, err := repo.CreateUser(ctx, "editor", true)
//	user, err = repo.GetUserByToken(ctx, token)
package users

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"

	"github.com/nissaya/reader/internal/entities"
)

// Repository handles user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// HashToken returns the hex SHA-256 of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateUser creates a user with a freshly generated token and returns both.
func (r *Repository) CreateUser(ctx context.Context, username string, admin bool) (*entities.User, string, error) {
	token, err := generateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		Username:  username,
		TokenHash: HashToken(token),
		IsAdmin:   admin,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*entities.User, error) {
	var users []entities.User
	if err := r.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// GetUserByToken looks a user up by plain token. Unknown tokens return nil.
func (r *Repository) GetUserByToken(ctx context.Context, token string) (*entities.User, error) {
	return r.first(ctx, "token_hash = ?", HashToken(token))
}

// GetUserByID retrieves a user by ID, or nil.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username, or nil.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, "username = ?", username)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
