// Package service implements the application services orchestrating
// storage and the token core.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/internal/token"
	"github.com/iudanet/taskkeeper/internal/validation"
)

// AuthResult is the response payload of registration, login and refresh
type AuthResult struct {
	models.TokenPair
	User models.UserDTO `json:"user"`
}

// UserList is the pagination envelope for user listings
type UserList struct {
	Users       []*models.User `json:"users"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// UserService orchestrates the session lifecycle and user CRUD over
// the credential store and the token service
type UserService struct {
	logger     *slog.Logger
	users      storage.UserStorage
	tokens     *token.Service
	bcryptCost int
}

// NewUserService creates a new user service.
// bcryptCost controls the password hashing work factor.
func NewUserService(logger *slog.Logger, users storage.UserStorage, tokens *token.Service, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		logger:     logger,
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Registration creates a new user and opens its first session.
// An already registered email fails with BadRequest; the message
// distinguishes a same-role conflict from a different-role one.
func (s *UserService) Registration(ctx context.Context, email, password string, role models.Role) (*AuthResult, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if existing.Role != role {
			return nil, apperr.BadRequest(fmt.Sprintf(
				"user with email %s is already registered with a different role: %s", email, existing.Role))
		}
		return nil, apperr.BadRequest(fmt.Sprintf("user with email %s already exists", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.BadRequest(fmt.Sprintf("user with email %s already exists", email))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)))

	return s.openSession(ctx, user)
}

// Login authenticates a user by the exact (email, role) pair.
// A missing pair fails with NotFound, a password mismatch with Unauthorized.
func (s *UserService) Login(ctx context.Context, email, password string, role models.Role) (*AuthResult, error) {
	user, err := s.users.GetUserByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "login failed: invalid password", slog.Int64("user_id", user.ID))
		return nil, apperr.Unauthorized("invalid password")
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))

	return s.openSession(ctx, user)
}

// Refresh rotates the session token pair. The refresh token must carry a
// valid signature AND match a stored record; either failing yields
// Unauthorized. A valid token for a since-deleted user yields NotFound.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized("user is not authorized")
	}

	payload := s.tokens.ValidateRefreshToken(refreshToken)

	stored, err := s.tokens.FindToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if payload == nil || stored == nil {
		return nil, apperr.Unauthorized("user is not authorized")
	}

	user, err := s.users.GetUserByID(ctx, payload.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	s.logger.InfoContext(ctx, "session refreshed", slog.Int64("user_id", user.ID))

	return s.openSession(ctx, user)
}

// DeleteUser removes a user and its live session
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("user to delete not found")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// Каскад на token store: живая сессия удаленного пользователя гаснет
	if err := s.tokens.DeleteUserToken(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to delete user token", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "user deleted", slog.Int64("user_id", id))

	return nil
}

// UpdateUser updates the provided fields; empty values are left unchanged
func (s *UserService) UpdateUser(ctx context.Context, id int64, email, password string, role models.Role) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, apperr.BadRequest("invalid email format")
		}
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			return nil, apperr.BadRequest(fmt.Sprintf("user with email %s already exists", email))
		}
		user.Email = email
	}

	if password != "" {
		if err := validation.ValidatePassword(password); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if role != "" {
		if err := validation.ValidateRole(role); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}
		user.Role = role
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.BadRequest(fmt.Sprintf("user with email %s already exists", email))
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdateUserImage stores the avatar path on the user record
func (s *UserService) UpdateUserImage(ctx context.Context, id int64, avatarPath string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if avatarPath != "" {
		user.Avatar = avatarPath
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// GetAllUsers returns a page of users. A role filter that matches no role
// present in storage yields an empty result, not an error.
func (s *UserService) GetAllUsers(ctx context.Context, page, limit int, sort, roleFilter, emailFilter string) (*UserList, error) {
	if roleFilter != "" {
		roles, err := s.users.ListRoles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}
		if !slices.Contains(roles, models.Role(roleFilter)) {
			// Неизвестная роль: пустой результат вместо ошибки
			return &UserList{
				Users:       []*models.User{},
				Total:       0,
				TotalPages:  0,
				CurrentPage: page,
			}, nil
		}
	}

	users, total, err := s.users.ListUsers(ctx, storage.ListUsersOptions{
		Sort:        sort,
		RoleFilter:  roleFilter,
		EmailFilter: emailFilter,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserList{
		Users:       users,
		Total:       total,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// openSession issues a fresh token pair and persists the refresh token
func (s *UserService) openSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	dto := models.NewUserDTO(user)

	pair, err := s.tokens.GenerateTokens(models.TokenPayload(dto))
	if err != nil {
		return nil, err
	}

	if err := s.tokens.SaveToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResult{TokenPair: *pair, User: dto}, nil
}

// totalPages computes ceil(total/limit)
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
