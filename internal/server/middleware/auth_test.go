package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/handlers"
	"github.com/iudanet/taskkeeper/internal/server/storage"
	"github.com/iudanet/taskkeeper/internal/token"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// nopTokenStorage is a TokenStorage that stores nothing; the auth
// middleware never touches the store
type nopTokenStorage struct{}

func (nopTokenStorage) SaveRefreshToken(context.Context, *models.RefreshToken) error { return nil }
func (nopTokenStorage) FindByToken(context.Context, string) (*models.RefreshToken, error) {
	return nil, storage.ErrTokenNotFound
}
func (nopTokenStorage) DeleteByUserID(context.Context, int64) error { return nil }

func newTokenService(t *testing.T, ttl time.Duration) *token.Service {
	t.Helper()

	return token.NewService(setupTestLogger(), nopTokenStorage{}, token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		TokenTTL:      ttl,
	})
}

func issueAccessToken(t *testing.T, svc *token.Service, payload models.TokenPayload) string {
	t.Helper()

	pair, err := svc.GenerateTokens(payload)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthMiddleware_Success(t *testing.T) {
	logger := setupTestLogger()
	tokens := newTokenService(t, time.Hour)

	accessToken := issueAccessToken(t, tokens, models.TokenPayload{
		ID:    42,
		Email: "alice@example.com",
		Role:  models.RoleUser,
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := handlers.GetUser(r.Context())
		require.NotNil(t, payload, "payload should be in context")
		assert.Equal(t, int64(42), payload.ID)
		assert.Equal(t, "alice@example.com", payload.Email)
		assert.Equal(t, models.RoleUser, payload.Role)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	wrappedHandler := AuthMiddleware(logger, tokens)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	logger := setupTestLogger()
	tokens := newTokenService(t, time.Hour)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	})
	wrappedHandler := AuthMiddleware(logger, tokens)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	// No Authorization header

	w := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "user is not authorized")
	assert.Contains(t, w.Body.String(), "UNKNOWN_ERROR")
}

func TestAuthMiddleware_InvalidAuthHeaderFormat(t *testing.T) {
	logger := setupTestLogger()
	tokens := newTokenService(t, time.Hour)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	})
	wrappedHandler := AuthMiddleware(logger, tokens)(handler)

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "no Bearer prefix",
			header: "token123",
		},
		{
			name:   "wrong prefix",
			header: "Basic token123",
		},
		{
			name:   "only Bearer",
			header: "Bearer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.header)

			w := httptest.NewRecorder()
			wrappedHandler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	logger := setupTestLogger()
	tokens := newTokenService(t, time.Hour)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	})
	wrappedHandler := AuthMiddleware(logger, tokens)(handler)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "random string",
			token: "randomstring123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			w := httptest.NewRecorder()
			wrappedHandler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	logger := setupTestLogger()

	// Токен с отрицательным TTL истекает в момент выпуска
	expired := newTokenService(t, -time.Minute)
	accessToken := issueAccessToken(t, expired, models.TokenPayload{
		ID:    42,
		Email: "alice@example.com",
		Role:  models.RoleUser,
	})

	tokens := newTokenService(t, time.Hour)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	})
	wrappedHandler := AuthMiddleware(logger, tokens)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	logger := setupTestLogger()
	tokens := newTokenService(t, time.Hour)

	// Refresh токен подписан другим секретом и не проходит как access
	pair, err := tokens.GenerateTokens(models.TokenPayload{
		ID:    42,
		Email: "alice@example.com",
		Role:  models.RoleUser,
	})
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	})
	wrappedHandler := AuthMiddleware(logger, tokens)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)

	w := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
