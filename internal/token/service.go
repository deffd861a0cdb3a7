// Package token implements the session token core: issuance and validation
// of signed access/refresh token pairs plus refresh token persistence.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/taskkeeper/internal/apperr"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

// Claims represents JWT claims carried by both access and refresh tokens
type Claims struct {
	UserID int64       `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Config содержит конфигурацию для выпуска токенов.
// Access и refresh токены подписываются разными секретами и несут
// одинаковые claims с одинаковым сроком жизни: различие только в секрете.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	TokenTTL      time.Duration
}

// Service issues and validates signed session tokens and persists
// refresh tokens through TokenStorage
type Service struct {
	logger  *slog.Logger
	storage storage.TokenStorage
	cfg     Config
}

// NewService creates a new token service
func NewService(logger *slog.Logger, tokenStorage storage.TokenStorage, cfg Config) *Service {
	return &Service{
		logger:  logger,
		storage: tokenStorage,
		cfg:     cfg,
	}
}

// GenerateTokens issues a new access/refresh token pair carrying the
// session payload. Fails with BadRequest when the payload is empty.
func (s *Service) GenerateTokens(payload models.TokenPayload) (*models.TokenPair, error) {
	if payload.IsZero() {
		return nil, apperr.BadRequest("missing payload for token generation")
	}

	accessToken, err := s.sign(payload, s.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(payload, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken verifies signature and expiry against the access
// secret. Returns the decoded payload, or nil on any verification failure.
func (s *Service) ValidateAccessToken(tokenString string) *models.TokenPayload {
	return s.validate(tokenString, s.cfg.AccessSecret)
}

// ValidateRefreshToken verifies signature and expiry against the refresh
// secret. Returns the decoded payload, or nil on any verification failure.
func (s *Service) ValidateRefreshToken(tokenString string) *models.TokenPayload {
	return s.validate(tokenString, s.cfg.RefreshSecret)
}

// SaveToken upserts the refresh token record keyed by user ID.
// Fails with BadRequest when the token is empty.
func (s *Service) SaveToken(ctx context.Context, userID int64, refreshToken string) error {
	if refreshToken == "" {
		return apperr.BadRequest("missing refresh token to save")
	}

	now := time.Now()
	record := &models.RefreshToken{
		UserID:    userID,
		Token:     refreshToken,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveRefreshToken(ctx, record); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// FindToken looks up a stored record matching the literal token string.
// Returns nil when no record matches; fails with Internal on storage error.
func (s *Service) FindToken(ctx context.Context, refreshToken string) (*models.RefreshToken, error) {
	record, err := s.storage.FindByToken(ctx, refreshToken)
	if err != nil {
		if err == storage.ErrTokenNotFound {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "failed to look up refresh token", slog.Any("error", err))
		return nil, apperr.Internal("failed to look up refresh token")
	}

	return record, nil
}

// DeleteUserToken removes the user's refresh token record, if any.
// Absence is not an error: a deleted user may have no live session.
func (s *Service) DeleteUserToken(ctx context.Context, userID int64) error {
	if err := s.storage.DeleteByUserID(ctx, userID); err != nil {
		if err == storage.ErrTokenNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// sign создает подписанный HS256 токен с claims из payload
func (s *Service) sign(payload models.TokenPayload, secret []byte) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: payload.ID,
		Email:  payload.Email,
		Role:   payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "taskkeeper",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// validate парсит и проверяет токен против переданного секрета.
// Любая ошибка проверки (формат, подпись, срок) дает nil, не ошибку.
func (s *Service) validate(tokenString string, secret []byte) *models.TokenPayload {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil
	}

	return &models.TokenPayload{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}
}
