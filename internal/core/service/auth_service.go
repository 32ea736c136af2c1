package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskloop/task-api/internal/core/domain"
	"github.com/taskloop/task-api/internal/core/ports"
)

const minPasswordLen = 8

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	tokens *TokenService
	logger zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens *TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

// Register creates a new active user with a hashed password. Email and
// username uniqueness is ultimately enforced by the store's unique indexes;
// a violation surfaces as domain.ErrDuplicateEmail / ErrDuplicateUsername.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	if err := validateRegistration(email, username, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login authenticates by email, falling back to username when no user
// matches by email, and returns a signed access token. Absent user and wrong
// password both return domain.ErrInvalidCredentials so the two cases cannot
// be told apart from outside.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, error) {
	if identifier == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, identifier)
	if err == domain.ErrUserNotFound && !strings.Contains(identifier, "@") {
		user, err = s.repo.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", domain.ErrInactiveUser
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

func validateRegistration(email, username, password string) error {
	switch {
	case email == "":
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	case username == "":
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	case len(password) < minPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	return nil
}
