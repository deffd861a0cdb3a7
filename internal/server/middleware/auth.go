package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/server/handlers"
	"github.com/iudanet/taskkeeper/internal/token"
)

// AuthMiddleware создает middleware для проверки access токена.
// Проверяется только подпись и срок: token store здесь не участвует.
func AuthMiddleware(logger *slog.Logger, tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header")
				apperr.Write(w, logger, apperr.Unauthorized("user is not authorized"))
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				apperr.Write(w, logger, apperr.Unauthorized("user is not authorized"))
				return
			}

			payload := tokens.ValidateAccessToken(parts[1])
			if payload == nil {
				logger.Warn("Invalid access token")
				apperr.Write(w, logger, apperr.Unauthorized("user is not authorized"))
				return
			}

			// Токен с неполными claims не принимается
			if !payload.Complete() {
				logger.Warn("Access token with incomplete payload")
				apperr.Write(w, logger, apperr.Unauthorized("user is not authorized"))
				return
			}

			logger.Debug("User authenticated",
				"user_id", payload.ID,
				"role", string(payload.Role))

			next.ServeHTTP(w, r.WithContext(handlers.SetUser(r.Context(), payload)))
		})
	}
}
