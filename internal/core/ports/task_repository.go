package ports

import (
	"context"

	"github.com/taskloop/task-api/internal/core/domain"
)

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskRepository defines persistence operations for tasks. Every operation
// that takes an ownerID must filter by it inside the store query itself, so a
// task belonging to another owner is indistinguishable from an absent one
// (domain.ErrTaskNotFound in both cases).
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// ListByOwner returns the owner's tasks in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	FindByID(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error)
	// Update applies the non-nil fields of upd and bumps updated_at,
	// returning the task as stored after the write.
	Update(ctx context.Context, ownerID string, taskID int64, upd TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, ownerID string, taskID int64) error
	// ToggleCompleted atomically flips the completed flag server-side, so
	// concurrent toggles never lose a flip to a read-modify-write race.
	ToggleCompleted(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error)
}
