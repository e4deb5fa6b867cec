package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum allowed length for a task title.
const MaxTitleLength = 255

// Common task validation errors
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner = errors.New("task owner cannot be empty")
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrTitleTooLong   = errors.New("title must be at most 255 characters")
)

// Task represents a single task record. The owner (UserID) is set once at
// creation and never reassigned; every read and mutation is scoped to it.
type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"` // Owner, never serialized to clients
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, title, description string, isCompleted bool) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		IsCompleted: isCompleted,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	return nil
}

// IsOwnedBy reports whether the task belongs to the given user. Handlers
// re-check ownership with this even when the store query already filtered
// by owner, so correctness does not rest on a single WHERE clause.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID != uuid.Nil && t.UserID == userID
}
