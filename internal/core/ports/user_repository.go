package ports

import (
	"context"

	"github.com/taskloop/task-api/internal/core/domain"
)

// UserRepository defines the interface for user identity persistence.
// Create must rely on the store's unique indexes as the final authority on
// email/username uniqueness and translate violations into
// domain.ErrDuplicateEmail / domain.ErrDuplicateUsername.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
