package models

import "time"

// RefreshToken представляет сохраненный refresh token пользователя.
// На одного пользователя хранится не более одной живой записи:
// сохранение нового токена перезаписывает предыдущий.
type RefreshToken struct {
	ID        string    `json:"id"`      // UUID записи
	UserID    int64     `json:"user_id"` // владелец, ключ записи
	Token     string    `json:"token"`   // подписанный refresh token
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
