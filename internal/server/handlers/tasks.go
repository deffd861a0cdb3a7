package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/server/service"
)

// taskSortFields are the sort values accepted by the task listing
var taskSortFields = []string{"title", "description", "createdAt", "updatedAt"}

// TaskHandler обрабатывает CRUD запросы по задачам
type TaskHandler struct {
	logger *slog.Logger
	tasks  *service.TaskService
}

// NewTaskHandler создает новый handler для задач
func NewTaskHandler(logger *slog.Logger, tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{
		logger: logger,
		tasks:  tasks,
	}
}

// createTaskRequest is the request body of the task creation.
// Владелец задачи приходит в теле, не из контекста авторизации.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      int64  `json:"userId"`
}

// Create обрабатывает POST /api/tasks.
// Заголовок задачи не валидируется: пустой title допустим.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create task request", slog.Any("error", err))
		apperr.Write(w, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	task, err := h.tasks.CreateTask(ctx, req.UserID, req.Title, req.Description)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, task)
}

// ListByUser обрабатывает GET /api/tasks/user/{userId}
func (h *TaskHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		apperr.Write(w, h.logger,
			apperr.NotFound("invalid user id").WithCode("USER_NOT_FOUND"))
		return
	}

	query := r.URL.Query()
	page := queryInt(query.Get("page"), 1)
	limit := queryInt(query.Get("limit"), 10)

	sort := query.Get("sort")
	if sort == "" {
		sort = "createdAt"
	}
	if !slices.Contains(taskSortFields, sort) {
		apperr.Write(w, h.logger,
			apperr.BadRequest("invalid sort parameter").WithCode("INVALID_SORT_FIELD"))
		return
	}

	list, err := h.tasks.GetTasksByUser(ctx, userID, page, limit, sort, query.Get("titleFilter"))
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, list)
}

// updateTaskRequest is the request body of the task update
type updateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update обрабатывает PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("invalid task id"))
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update task request", slog.Any("error", err))
		apperr.Write(w, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	task, err := h.tasks.UpdateTask(ctx, id, req.Title, req.Description)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, task)
}

// Delete обрабатывает DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("invalid task id"))
		return
	}

	if err := h.tasks.DeleteTask(ctx, id); err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, messageResponse{Message: "task deleted successfully"})
}
