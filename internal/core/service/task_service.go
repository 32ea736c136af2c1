package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskloop/task-api/internal/core/domain"
	"github.com/taskloop/task-api/internal/core/ports"
)

// IdempotencyStore abstracts the replay cache (Redis) used for task creation.
// Keys are scoped per owner so one user's Idempotency-Key can never replay
// another user's task.
type IdempotencyStore interface {
	Get(ctx context.Context, ownerID, key string) (int64, bool, error)
	Set(ctx context.Context, ownerID, key string, taskID int64) error
}

// TaskService implements owner-scoped task use cases. Every call takes the
// already-authenticated owner id as an explicit parameter; the service never
// reads identity from ambient state.
type TaskService struct {
	repo   ports.TaskRepository
	idem   IdempotencyStore
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, idem IdempotencyStore, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, idem: idem, logger: logger}
}

// Create validates and persists a new task for the owner. When an idempotency
// key is supplied and already seen, the previously created task is returned
// without side effects.
func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		taskID, hit, err := s.idem.Get(ctx, input.OwnerID, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("owner_id", input.OwnerID).Msg("idempotency lookup failed, creating anyway")
		} else if hit {
			existing, err := s.repo.FindByID(ctx, input.OwnerID, taskID)
			if err == nil {
				s.logger.Info().Int64("task_id", taskID).Str("owner_id", input.OwnerID).Msg("idempotent replay")
				return existing, nil
			}
			// The recorded task is gone (e.g. deleted since); fall through
			// and create a fresh one.
		}
	}

	task := &domain.Task{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", input.OwnerID).Msg("failed to create task")
		return nil, err
	}

	if input.IdempotencyKey != "" {
		if err := s.idem.Set(ctx, input.OwnerID, input.IdempotencyKey, created.ID); err != nil {
			s.logger.Warn().Err(err).Int64("task_id", created.ID).Msg("failed to record idempotency key")
		}
	}

	s.logger.Info().Int64("task_id", created.ID).Str("owner_id", input.OwnerID).Msg("task created")
	return created, nil
}

// List returns all of the owner's tasks in creation order.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns the owner's task, or domain.ErrTaskNotFound for ids
// that do not exist and ids owned by someone else.
func (s *TaskService) Get(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
	return s.repo.FindByID(ctx, ownerID, taskID)
}

// Update applies the supplied fields only, leaving the rest unchanged, and
// bumps updated_at. The owner id itself is never a mutable field.
func (s *TaskService) Update(ctx context.Context, input ports.UpdateTaskInput) (*domain.Task, error) {
	if input.Title == nil && input.Description == nil && input.Completed == nil {
		return s.repo.FindByID(ctx, input.OwnerID, input.TaskID)
	}
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, input.OwnerID, input.TaskID, ports.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	})
}

// Delete removes the owner's task. A second delete of the same id reports
// domain.ErrTaskNotFound.
func (s *TaskService) Delete(ctx context.Context, ownerID string, taskID int64) error {
	if err := s.repo.Delete(ctx, ownerID, taskID); err != nil {
		return err
	}
	s.logger.Info().Int64("task_id", taskID).Str("owner_id", ownerID).Msg("task deleted")
	return nil
}

// Toggle flips the completed flag. Two consecutive toggles return the task to
// its original state.
func (s *TaskService) Toggle(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
	return s.repo.ToggleCompleted(ctx, ownerID, taskID)
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(title) > domain.TitleMaxLen {
		return fmt.Errorf("%w: title must be at most %d characters", domain.ErrValidation, domain.TitleMaxLen)
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > domain.DescriptionMaxLen {
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, domain.DescriptionMaxLen)
	}
	return nil
}
