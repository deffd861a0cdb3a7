package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/storage"
)

// SaveRefreshToken upserts the refresh token record keyed by user ID.
// On replace the record keeps its ID and CreatedAt, only the token string
// and UpdatedAt change.
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketTokens)
		if bucket == nil {
			return fmt.Errorf("tokens bucket not found")
		}

		key := userKey(token.UserID)
		now := time.Now()

		if existing := bucket.Get(key); existing != nil {
			// Перезаписываем токен, сохраняя идентичность записи
			prev := &models.RefreshToken{}
			if err := json.Unmarshal(existing, prev); err != nil {
				return fmt.Errorf("failed to unmarshal existing token: %w", err)
			}
			token.ID = prev.ID
			token.CreatedAt = prev.CreatedAt
		} else {
			token.ID = uuid.New().String()
			if token.CreatedAt.IsZero() {
				token.CreatedAt = now
			}
		}
		token.UpdatedAt = now

		data, err := json.Marshal(token)
		if err != nil {
			return fmt.Errorf("failed to marshal token: %w", err)
		}

		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		return nil
	})
}

// FindByToken retrieves the record holding the literal token string
func (s *Storage) FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	var found *models.RefreshToken

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketTokens)
		if bucket == nil {
			return fmt.Errorf("tokens bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			record := &models.RefreshToken{}
			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal token record: %w", err)
			}
			if record.Token == tokenString {
				found = record
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, storage.ErrTokenNotFound
	}

	return found, nil
}

// DeleteByUserID removes the user's refresh token record
func (s *Storage) DeleteByUserID(ctx context.Context, userID int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketTokens)
		if bucket == nil {
			return fmt.Errorf("tokens bucket not found")
		}

		key := userKey(userID)
		if bucket.Get(key) == nil {
			return storage.ErrTokenNotFound
		}

		if err := bucket.Delete(key); err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}

		return nil
	})
}
