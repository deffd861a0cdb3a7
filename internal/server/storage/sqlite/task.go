package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

const taskColumns = `id, title, description, user_id, created_at, updated_at`

// CreateTask creates a new task and fills in the generated ID
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullString(task.Description),
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted task id: %w", err)
	}
	task.ID = id

	return nil
}

// GetTaskByID retrieves task by ID
func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTaskRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// UpdateTask updates title and description
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	task.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullString(task.Description),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}

// DeleteTask deletes task by ID
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}

// taskSortColumns maps the API sort fields onto real columns
var taskSortColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// ListTasksByUser returns a page of the user's tasks and the total count
// matching the filters
func (s *Storage) ListTasksByUser(ctx context.Context, userID int64, opts storage.ListTasksOptions) ([]*models.Task, int, error) {
	where := " WHERE user_id = ?"
	args := []interface{}{userID}

	if opts.TitleFilter != "" {
		where += " AND title LIKE ?"
		args = append(args, "%"+opts.TitleFilter+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	sortColumn, ok := taskSortColumns[opts.Sort]
	if !ok {
		sortColumn = "created_at"
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where +
		` ORDER BY ` + sortColumn + ` ASC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, total, nil
}

func scanTaskRow(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var description sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if description.Valid {
		task.Description = description.String
	}

	return task, nil
}
