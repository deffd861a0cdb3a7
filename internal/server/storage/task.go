package storage

import (
	"context"

	"github.com/iudanet/taskkeeper/internal/models"
)

// ListTasksOptions describes filtering, sorting and pagination for
// ListTasksByUser. Sort is the API sort field; unknown fields fall back
// to creation time.
type ListTasksOptions struct {
	Sort        string
	TitleFilter string
	Limit       int
	Offset      int
}

// TaskStorage defines interface for task data persistence
type TaskStorage interface {
	// CreateTask creates a new task and fills in its generated ID
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTaskByID retrieves task by ID.
	// Returns ErrTaskNotFound if task doesn't exist.
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)

	// UpdateTask updates title and description.
	// Returns ErrTaskNotFound if task doesn't exist.
	UpdateTask(ctx context.Context, task *models.Task) error

	// DeleteTask deletes task by ID.
	// Returns ErrTaskNotFound if task doesn't exist.
	DeleteTask(ctx context.Context, id int64) error

	// ListTasksByUser returns a page of the user's tasks and the total
	// count matching the filters.
	ListTasksByUser(ctx context.Context, userID int64, opts ListTasksOptions) ([]*models.Task, int, error)
}
