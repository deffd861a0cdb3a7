package storage

import (
	"context"

	"github.com/iudanet/taskkeeper/internal/models"
)

// ListUsersOptions describes filtering, sorting and pagination for ListUsers.
// Sort is the API sort field; the implementation maps it to a column and
// falls back to creation time for unknown fields.
type ListUsersOptions struct {
	Sort        string
	RoleFilter  string
	EmailFilter string
	Limit       int
	Offset      int
}

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user and fills in its generated ID.
	// Returns ErrUserAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email regardless of role.
	// Returns ErrUserNotFound if user doesn't exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByEmailAndRole retrieves user by the exact (email, role) pair.
	// Returns ErrUserNotFound if no such pair exists.
	GetUserByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)

	// GetUserByID retrieves user by ID.
	// Returns ErrUserNotFound if user doesn't exist.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// UpdateUser updates email, password hash, role and avatar.
	// Returns ErrUserNotFound if user doesn't exist.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes user by ID.
	// Returns ErrUserNotFound if user doesn't exist.
	DeleteUser(ctx context.Context, id int64) error

	// ListUsers returns a page of users and the total count matching
	// the filters.
	ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error)

	// ListRoles returns the distinct roles present in storage
	ListRoles(ctx context.Context) ([]models.Role, error)
}
