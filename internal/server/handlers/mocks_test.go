package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/service"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/internal/token"
)

// mockUserStorage is an in-memory UserStorage for handler tests
type mockUserStorage struct {
	users  map[int64]*models.User
	nextID int64
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: map[int64]*models.User{}}
}

func (m *mockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrUserAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByEmailAndRole(_ context.Context, email string, role models.Role) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.Role == role {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStorage) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return storage.ErrUserAlreadyExists
		}
	}
	user.UpdatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStorage) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStorage) ListUsers(_ context.Context, opts storage.ListUsersOptions) ([]*models.User, int, error) {
	matched := []*models.User{}
	for _, u := range m.users {
		if opts.RoleFilter != "" && string(u.Role) != opts.RoleFilter {
			continue
		}
		if opts.EmailFilter != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(opts.EmailFilter)) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if opts.Offset >= total {
		return []*models.User{}, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return matched[opts.Offset:end], total, nil
}

func (m *mockUserStorage) ListRoles(_ context.Context) ([]models.Role, error) {
	seen := map[models.Role]bool{}
	var roles []models.Role
	for _, u := range m.users {
		if !seen[u.Role] {
			seen[u.Role] = true
			roles = append(roles, u.Role)
		}
	}
	return roles, nil
}

// mockTaskStorage is an in-memory TaskStorage for handler tests
type mockTaskStorage struct {
	tasks  map[int64]*models.Task
	nextID int64
}

func newMockTaskStorage() *mockTaskStorage {
	return &mockTaskStorage{tasks: map[int64]*models.Task{}}
}

func (m *mockTaskStorage) CreateTask(_ context.Context, task *models.Task) error {
	m.nextID++
	task.ID = m.nextID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStorage) GetTaskByID(_ context.Context, id int64) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, storage.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskStorage) UpdateTask(_ context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return storage.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStorage) DeleteTask(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return storage.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskStorage) ListTasksByUser(_ context.Context, userID int64, opts storage.ListTasksOptions) ([]*models.Task, int, error) {
	matched := []*models.Task{}
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if opts.TitleFilter != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(opts.TitleFilter)) {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if opts.Offset >= total {
		return []*models.Task{}, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return matched[opts.Offset:end], total, nil
}

// mockTokenStorage is an in-memory TokenStorage keyed by user ID
type mockTokenStorage struct {
	records map[int64]*models.RefreshToken
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{records: map[int64]*models.RefreshToken{}}
}

func (m *mockTokenStorage) SaveRefreshToken(_ context.Context, record *models.RefreshToken) error {
	cp := *record
	m.records[record.UserID] = &cp
	return nil
}

func (m *mockTokenStorage) FindByToken(_ context.Context, tokenString string) (*models.RefreshToken, error) {
	for _, r := range m.records {
		if r.Token == tokenString {
			cp := *r
			return &cp, nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (m *mockTokenStorage) DeleteByUserID(_ context.Context, userID int64) error {
	if _, ok := m.records[userID]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.records, userID)
	return nil
}

// testEnv bundles the services built over in-memory storages
type testEnv struct {
	users     *mockUserStorage
	tasks     *mockTaskStorage
	tokens    *mockTokenStorage
	userSvc   *service.UserService
	taskSvc   *service.TaskService
	tokenSvc  *token.Service
	logger    *slog.Logger
	cookieTTL time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := newMockUserStorage()
	tasks := newMockTaskStorage()
	tokens := newMockTokenStorage()

	tokenSvc := token.NewService(logger, tokens, token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		TokenTTL:      time.Hour,
	})

	return &testEnv{
		users:     users,
		tasks:     tasks,
		tokens:    tokens,
		userSvc:   service.NewUserService(logger, users, tokenSvc, bcrypt.MinCost),
		taskSvc:   service.NewTaskService(logger, tasks, users),
		tokenSvc:  tokenSvc,
		logger:    logger,
		cookieTTL: time.Hour,
	}
}

// createUser inserts a user directly into the mock storage
func (e *testEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         role,
	}
	if err := e.users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("createUser: %v", err)
	}
	return user
}
