package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/service"
)

// userSortFields are the sort values accepted by the user listing
var userSortFields = []string{"email", "role", "createdAt", "updatedAt"}

// maxAvatarSize limits the multipart form held in memory
const maxAvatarSize = 10 << 20 // 10 MB

// allowedAvatarTypes are the content types accepted for avatar upload
var allowedAvatarTypes = []string{"image/jpeg", "image/png", "image/gif"}

// UserHandler обрабатывает CRUD запросы по пользователям
type UserHandler struct {
	logger    *slog.Logger
	users     *service.UserService
	uploadDir string
}

// NewUserHandler создает новый handler для пользователей.
// uploadDir указывает каталог для хранения аватаров.
func NewUserHandler(logger *slog.Logger, users *service.UserService, uploadDir string) *UserHandler {
	return &UserHandler{
		logger:    logger,
		users:     users,
		uploadDir: uploadDir,
	}
}

// Delete обрабатывает DELETE /api/user/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("invalid user id"))
		return
	}

	if err := h.users.DeleteUser(ctx, id); err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

// updateUserRequest is the request body of the user update
type updateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Update обрабатывает PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("invalid user id"))
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update request", slog.Any("error", err))
		apperr.Write(w, h.logger, apperr.BadRequest("invalid request body"))
		return
	}

	user, err := h.users.UpdateUser(ctx, id, req.Email, req.Password, req.Role)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, user)
}

// List обрабатывает GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	page := queryInt(query.Get("page"), 1)
	limit := queryInt(query.Get("limit"), 10)

	sort := query.Get("sort")
	if sort == "" {
		sort = "createdAt"
	}
	if !slices.Contains(userSortFields, sort) {
		apperr.Write(w, h.logger, apperr.BadRequest("invalid sort parameter"))
		return
	}

	list, err := h.users.GetAllUsers(ctx, page, limit, sort,
		query.Get("roleFilter"), query.Get("emailFilter"))
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, list)
}

// UploadAvatar обрабатывает POST /api/users/{id}/avatar.
// Принимает multipart поле "avatar"; допустимы только jpeg, png и gif.
// Недопустимый тип неотличим от отсутствия файла.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("invalid user id"))
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("file not uploaded"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		apperr.Write(w, h.logger, apperr.BadRequest("file not uploaded"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if !slices.Contains(allowedAvatarTypes, contentType) {
		h.logger.WarnContext(ctx, "avatar upload with disallowed type",
			slog.String("content_type", contentType))
		apperr.Write(w, h.logger, apperr.BadRequest("file not uploaded"))
		return
	}

	avatarPath, err := h.saveAvatar(file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save avatar", slog.Any("error", err))
		apperr.Write(w, h.logger, apperr.Internal("failed to save avatar"))
		return
	}

	user, err := h.users.UpdateUserImage(ctx, id, avatarPath)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "avatar uploaded",
		slog.Int64("user_id", id),
		slog.String("path", avatarPath))

	sendJSON(h.logger, w, http.StatusOK, user)
}

// saveAvatar stores the uploaded file under a uuid name and returns the
// relative path recorded on the user
func (h *UserHandler) saveAvatar(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	filename := uuid.New().String() + filepath.Ext(originalName)
	fullPath := filepath.Join(h.uploadDir, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return fullPath, nil
}

// queryInt parses a positive integer query parameter with a fallback
func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
