package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/handlers"
)

// AdminMiddleware создает middleware, пропускающее только роль ADMIN.
// Ставится после AuthMiddleware: payload берется из контекста запроса.
// Отсутствие payload и неподходящая роль дают одинаковый 403.
func AdminMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := handlers.GetUser(r.Context())
			if payload == nil {
				logger.Warn("Access denied: no session payload in context")
				apperr.Write(w, logger, apperr.Forbidden("access denied"))
				return
			}

			if payload.Role != models.RoleAdmin {
				logger.Warn("Access denied: admin role required",
					"user_id", payload.ID,
					"role", string(payload.Role))
				apperr.Write(w, logger, apperr.Forbidden("access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
