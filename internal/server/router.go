// Package server assembles the HTTP API: routes, middleware chains and
// the handlers behind them.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/taskkeeper/internal/server/handlers"
	"github.com/iudanet/taskkeeper/internal/server/middleware"
	"github.com/iudanet/taskkeeper/internal/server/service"
	"github.com/iudanet/taskkeeper/internal/token"
)

// Config управляет поведением роутера
type Config struct {
	UploadDir string
	// Лимит на auth эндпоинты: запросов RateLimit за окно RateWindow с одного IP
	RateLimit  int
	RateWindow time.Duration
	CookieTTL  time.Duration
	Version    string
}

// NewRouter собирает все маршруты API.
// PUT /api/users/{id} и GET /api/users намеренно открыты без авторизации.
func NewRouter(
	logger *slog.Logger,
	users *service.UserService,
	tasks *service.TaskService,
	tokens *token.Service,
	cfg Config,
) http.Handler {
	mux := http.NewServeMux()

	authHandler := handlers.NewAuthHandler(logger, users, cfg.CookieTTL)
	userHandler := handlers.NewUserHandler(logger, users, cfg.UploadDir)
	taskHandler := handlers.NewTaskHandler(logger, tasks)
	healthHandler := handlers.NewHealthHandler(logger, cfg.Version)

	auth := middleware.AuthMiddleware(logger, tokens)
	admin := middleware.AdminMiddleware(logger)
	ratelimit := middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow, logger)

	// Auth: открытые эндпоинты под rate limit
	mux.Handle("POST /api/registration", ratelimit(http.HandlerFunc(authHandler.Registration)))
	mux.Handle("POST /api/login", ratelimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /api/refresh", ratelimit(http.HandlerFunc(authHandler.Refresh)))

	// Users
	mux.Handle("DELETE /api/user/{id}", chain(http.HandlerFunc(userHandler.Delete), auth, admin))
	mux.HandleFunc("PUT /api/users/{id}", userHandler.Update)
	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.Handle("POST /api/users/{id}/avatar", auth(http.HandlerFunc(userHandler.UploadAvatar)))

	// Tasks: все операции требуют авторизации
	mux.Handle("POST /api/tasks", auth(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("GET /api/tasks/user/{userId}", auth(http.HandlerFunc(taskHandler.ListByUser)))
	mux.Handle("PUT /api/tasks/{id}", auth(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("DELETE /api/tasks/{id}", auth(http.HandlerFunc(taskHandler.Delete)))

	mux.HandleFunc("GET /api/health", healthHandler.Health)

	// Внешняя цепочка: recovery ловит паники в том числе из логирования
	handler := middleware.LoggingWithSkip(logger, []string{"/api/health"})(mux)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}

// chain оборачивает handler в middleware слева направо:
// первый элемент списка оказывается внешним
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
