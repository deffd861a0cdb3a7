package models

import "time"

// Role определяет роль пользователя в системе
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User представляет пользователя в системе
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`            // уникальный email
	PasswordHash string    `json:"-"`                // bcrypt хеш пароля, не сериализуется
	Role         Role      `json:"role"`             // ADMIN или USER
	Avatar       string    `json:"avatar,omitempty"` // путь к файлу аватара
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserDTO is the public-safe projection of a User used in responses
// and token payloads
type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserDTO derives the DTO from a user record
func NewUserDTO(u *User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}

// TokenPayload represents the session claims embedded in both access
// and refresh tokens. Derived from User at issuance time, never persisted.
type TokenPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsZero reports whether the payload carries no identity at all
func (p TokenPayload) IsZero() bool {
	return p.ID == 0 && p.Email == "" && p.Role == ""
}

// Complete reports whether all claim fields required by the auth
// middleware are present
func (p TokenPayload) Complete() bool {
	return p.ID != 0 && p.Email != "" && p.Role != ""
}

// TokenPair holds a freshly issued access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
