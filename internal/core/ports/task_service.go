package ports

import (
	"context"

	"github.com/taskloop/task-api/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a new task. OwnerID comes
// from the authenticated identity, never from the request body.
type CreateTaskInput struct {
	OwnerID     string
	Title       string
	Description string
	Completed   bool
	// IdempotencyKey, when non-empty, makes creation replay-safe: a retry
	// carrying the same key returns the originally created task.
	IdempotencyKey string
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	OwnerID     string
	TaskID      int64
	Title       *string
	Description *string
	Completed   *bool
}

// TaskService defines owner-scoped use-case operations for tasks.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error)
	Update(ctx context.Context, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID string, taskID int64) error
	Toggle(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error)
}
