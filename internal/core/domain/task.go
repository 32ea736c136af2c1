package domain

import (
	"errors"
	"time"
)

const (
	// TitleMaxLen and DescriptionMaxLen bound user-supplied text fields.
	TitleMaxLen       = 255
	DescriptionMaxLen = 1000
)

// ErrTaskNotFound is returned both when a task id does not exist and when it
// exists but belongs to another owner. Merging the two cases is intentional:
// error codes must never reveal whether another user's resource exists.
var ErrTaskNotFound = errors.New("task not found")

var ErrValidation = errors.New("validation failed")

// Task is a single to-do item owned by exactly one user. OwnerID is set once
// at creation from the authenticated identity and is never mutable.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
