package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

// TaskList is the pagination envelope for task listings
type TaskList struct {
	Tasks       []*models.Task `json:"tasks"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// TaskService implements task CRUD on top of the storage layer
type TaskService struct {
	logger *slog.Logger
	tasks  storage.TaskStorage
	users  storage.UserStorage
}

func NewTaskService(logger *slog.Logger, tasks storage.TaskStorage, users storage.UserStorage) *TaskService {
	return &TaskService{
		logger: logger,
		tasks:  tasks,
		users:  users,
	}
}

// CreateTask creates a task owned by userID. The owner must exist.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, title, description string) (*models.Task, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found").WithCode("USER_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		UserID:      userID,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID))

	return task, nil
}

// GetTasksByUser returns a page of the user's tasks.
// A user without tasks and a missing user both yield an empty page.
func (s *TaskService) GetTasksByUser(ctx context.Context, userID int64, page, limit int, sort, titleFilter string) (*TaskList, error) {
	tasks, total, err := s.tasks.ListTasksByUser(ctx, userID, storage.ListTasksOptions{
		Sort:        sort,
		TitleFilter: titleFilter,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskList{
		Tasks:       tasks,
		Total:       total,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// UpdateTask updates the provided fields; empty values are left unchanged
func (s *TaskService) UpdateTask(ctx context.Context, id int64, title, description string) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, apperr.NotFound("task not found").WithCode("TASK_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if title != "" {
		task.Title = title
	}
	if description != "" {
		task.Description = description
	}

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, apperr.NotFound("task not found").WithCode("TASK_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task by ID
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return apperr.NotFound("task not found").WithCode("TASK_NOT_FOUND")
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "task deleted", slog.Int64("task_id", id))

	return nil
}
