package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mkarlsen/taskly-api/internal/domain"
)

// TaskFilter narrows a task listing. The zero value matches all tasks
// owned by the user; filters never widen the owner scope.
type TaskFilter struct {
	// Completed, when non-nil, matches only tasks whose completion flag
	// equals the pointed-to value.
	Completed *bool

	// Search, when non-empty, matches tasks whose title or description
	// contains the string (case-insensitive).
	Search string
}

// TaskStore defines the interface for task data persistence.
// Every read and mutation is scoped to an owning user; a task that exists
// but belongs to another user is reported as ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task to the store. The task's UserID must already
	// be set to the owning user.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUser retrieves a task by ID, scoped to the given owner.
	// Returns ErrTaskNotFound if the task does not exist or is owned by
	// another user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// ListForUser returns all tasks owned by the given user, newest first,
	// optionally narrowed by the filter.
	ListForUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update persists changes to a task's mutable fields (title, description,
	// completion flag), scoped to the task's owner.
	// Returns ErrTaskNotFound if the task does not exist or is owned by
	// another user.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteForUser removes a task by ID, scoped to the given owner.
	// Returns ErrTaskNotFound if the task does not exist or is owned by
	// another user.
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
