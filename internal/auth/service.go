package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/nissaya/reader/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrUserExists       = errors.New("user already exists")
)

// UserRepository defines the user data access the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, username string, admin bool) (*entities.User, string, error)
	GetUserByToken(ctx context.Context, token string) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
}

// Service resolves bearer tokens to identities and issues new tokens.
type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// ValidateToken returns the identity that owns token.
func (s *Service) ValidateToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidToken
	}
	user, err := s.users.GetUserByToken(ctx, token)
	if err != nil {
		return User{}, fmt.Errorf("failed to look up token: %w", err)
	}
	if user == nil {
		return User{}, ErrInvalidToken
	}
	return User{ID: user.ID, Admin: user.IsAdmin}, nil
}

// CreateUser registers a user and returns the plain token, which is not
// stored anywhere and cannot be recovered later.
func (s *Service) CreateUser(ctx context.Context, username string, admin bool) (*entities.User, string, error) {
	if username == "" {
		return nil, "", ErrUsernameRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, "", ErrUsernameInvalid
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUserExists
	}

	return s.users.CreateUser(ctx, username, admin)
}
