package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/service"
	"github.com/iudanet/taskkeeper/internal/validation"
)

// refreshCookieName is the cookie carrying the refresh token between
// login and refresh requests
const refreshCookieName = "refreshToken"

// AuthHandler обрабатывает запросы регистрации, логина и refresh
type AuthHandler struct {
	logger    *slog.Logger
	users     *service.UserService
	cookieTTL time.Duration
}

// NewAuthHandler создает новый handler для авторизации.
// cookieTTL задает срок жизни refreshToken куки и совпадает со
// сроком жизни самих токенов.
func NewAuthHandler(logger *slog.Logger, users *service.UserService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		users:     users,
		cookieTTL: cookieTTL,
	}
}

// credentialsRequest is the request body of registration and login
type credentialsRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// validate проверяет наличие полей, формат email и длину пароля.
// Роль здесь не проверяется: этим занимаются сервис и схема БД.
func (req *credentialsRequest) validate() error {
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return apperr.BadRequest("email, password and role must not be empty")
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return apperr.BadRequest("invalid email format")
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return apperr.BadRequest(err.Error())
	}
	return nil
}

// Registration обрабатывает POST /api/registration
func (h *AuthHandler) Registration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode registration request", slog.Any("error", err))
		apperr.Write(w, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	if err := req.validate(); err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	result, err := h.users.Registration(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	sendJSON(h.logger, w, http.StatusOK, result)
}

// Login обрабатывает POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		apperr.Write(w, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	if err := req.validate(); err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	result, err := h.users.Login(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	sendJSON(h.logger, w, http.StatusOK, result)
}

// Refresh обрабатывает GET /api/refresh.
// Refresh токен приходит в куке, не в заголовке.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh cookie missing")
		apperr.Write(w, h.logger, apperr.Unauthorized("refreshToken cookie not found"))
		return
	}

	result, err := h.users.Refresh(ctx, cookie.Value)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	sendJSON(h.logger, w, http.StatusOK, result)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Path:     "/",
	})
}
