package storage

import (
	"context"

	"github.com/iudanet/taskkeeper/internal/models"
)

// TokenStorage defines interface for refresh token persistence.
// At most one live refresh token exists per user: saving replaces
// the previous record.
type TokenStorage interface {
	// SaveRefreshToken upserts the refresh token record keyed by user ID.
	// On replace the record keeps its ID and CreatedAt.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// FindByToken retrieves the record holding the literal token string.
	// Returns ErrTokenNotFound if no record matches.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByUserID removes the user's refresh token record.
	// Returns ErrTokenNotFound if the user has none.
	DeleteByUserID(ctx context.Context, userID int64) error
}
