package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mkarlsen/taskly-api/internal/domain"
	"github.com/mkarlsen/taskly-api/internal/store"
)

// TaskPatch carries a partial update to a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// TaskService provides task operations scoped to an owning user. A task that
// does not exist and a task owned by someone else are indistinguishable to
// callers; both surface store.ErrTaskNotFound.
type TaskService interface {
	// ListTasks returns the user's tasks, newest first, narrowed by the filter.
	ListTasks(
		ctx context.Context,
		userID uuid.UUID,
		filter store.TaskFilter,
	) ([]*domain.Task, error)

	// CreateTask persists a new task. The task's owner must already be set.
	CreateTask(ctx context.Context, task *domain.Task) error

	// GetTask retrieves a task by ID, scoped to the given owner.
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a task owned by the given user.
	// The read, ownership check, and write happen in a single transaction.
	UpdateTask(
		ctx context.Context,
		taskID, userID uuid.UUID,
		patch TaskPatch,
	) (*domain.Task, error)

	// DeleteTask removes a task owned by the given user.
	DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService. A nil db runs mutations directly
// against the store instead of inside a transaction; stores that manage their
// own consistency need no database handle.
func NewTaskService(taskStore store.TaskStore, db *sql.DB, logger *slog.Logger) TaskService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskServiceImpl{
		taskStore: taskStore,
		db:        db,
		logger:    logger.With("component", "task_service"),
	}
}

// inTx runs fn against a transaction-scoped store, committing on success and
// rolling back on error. Without a database handle fn runs against the plain
// store.
func (s *TaskServiceImpl) inTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.TaskStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.taskStore)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.taskStore.WithTx(tx))
	})
}

// ListTasks returns the user's tasks narrowed by the filter.
func (s *TaskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListForUser(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// CreateTask persists a new task inside a transaction.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, task *domain.Task) error {
	err := s.inTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		return txStore.Create(ctx, task)
	})
	if err != nil {
		s.logger.Error("failed to create task",
			"error", err,
			"user_id", task.UserID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Debug("task created successfully",
		"task_id", task.ID,
		"user_id", task.UserID)

	return nil
}

// GetTask retrieves a task by ID, scoped to the given owner.
func (s *TaskServiceImpl) GetTask(
	ctx context.Context,
	taskID, userID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetForUser(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// UpdateTask applies a partial update to a task. The read, the ownership
// re-check, and the write share one transaction, so a concurrent mutation
// cannot slip between them.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID, userID uuid.UUID,
	patch TaskPatch,
) (*domain.Task, error) {
	var updated *domain.Task

	err := s.inTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		task, err := txStore.GetForUser(ctx, taskID, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve task for update: %w", err)
		}

		if !task.IsOwnedBy(userID) {
			// The owner-scoped lookup should make this impossible; report it
			// exactly as if the task does not exist.
			s.logger.Warn("ownership mismatch after owner-scoped lookup",
				"task_id", taskID,
				"user_id", userID)
			return store.ErrTaskNotFound
		}

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.IsCompleted != nil {
			task.IsCompleted = *patch.IsCompleted
		}

		if err := txStore.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task updated successfully",
		"task_id", taskID,
		"user_id", userID)

	return updated, nil
}

// DeleteTask removes a task owned by the given user inside a transaction.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error {
	err := s.inTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		return txStore.DeleteForUser(ctx, taskID, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Debug("task deleted successfully",
		"task_id", taskID,
		"user_id", userID)

	return nil
}
