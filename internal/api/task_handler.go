package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mkarlsen/taskly-api/internal/api/shared"
	"github.com/mkarlsen/taskly-api/internal/domain"
	"github.com/mkarlsen/taskly-api/internal/platform/logger"
	"github.com/mkarlsen/taskly-api/internal/service"
	"github.com/mkarlsen/taskly-api/internal/store"
)

// TaskHandler handles task CRUD API requests. Every operation is scoped to
// the authenticated caller; a task owned by someone else is reported as not
// found, never as forbidden.
type TaskHandler struct {
	tasks     service.TaskService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
// If logger is nil, a default logger will be used.
func NewTaskHandler(tasks service.TaskService, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}

	return &TaskHandler{
		tasks:     tasks,
		validator: newValidator(),
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks.
// Supports an exact-match completion filter (?completed=) and a
// case-insensitive substring search over title and description (?search=).
// Filters only narrow the caller's own tasks; they can never surface another
// user's records.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Authentication required")
		return
	}

	var filter store.TaskFilter

	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			shared.RespondWithValidationError(w, r, map[string]string{
				"completed": "must be a boolean",
			})
			return
		}
		filter.Completed = &completed
	}
	filter.Search = r.URL.Query().Get("search")

	tasks, err := h.tasks.ListTasks(r.Context(), userID, filter)
	if err != nil {
		log.Error("failed to list tasks", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to list tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks.
// The handler is the sole authority on ownership assignment: the owner is
// always the authenticated caller, and any owner field in the request body
// is ignored.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, fieldErrors(err))
		return
	}

	task, err := domain.NewTask(userID, req.Title, req.Description, req.IsCompleted)
	if err != nil {
		shared.RespondWithValidationError(w, r, fieldErrors(err))
		return
	}

	if err := h.tasks.CreateTask(r.Context(), task); err != nil {
		log.Error("failed to create task", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{id}.
// Only the supplied fields are applied. The service checks ownership twice:
// once by the owner-scoped lookup, and again against the fetched record
// before writing, so correctness never rests on a single WHERE clause.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, fieldErrors(err))
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, userID, service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}.
// Success is an empty 204; a missing or foreign task is a 404.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
