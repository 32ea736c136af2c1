package ports

import (
	"context"

	"github.com/taskloop/task-api/internal/core/domain"
)

// AuthService implements registration and login against the credential store.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*domain.User, error)
	// Login accepts an email as the identifier, falling back to username
	// lookup when no user matches by email. Absent user and wrong password
	// both yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, identifier, password string) (string, error)
}
