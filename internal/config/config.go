// Package config loads server configuration from environment variables.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all server configuration.
// JWT secrets are injected here instead of living as code constants.
type Config struct {
	// HTTP
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":5000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Storage
	DatabasePath string `envconfig:"DATABASE_PATH" default:"taskkeeper.db"`
	TokenDBPath  string `envconfig:"TOKEN_DB_PATH" default:"tokens.db"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"uploads/avatars"`

	// JWT
	JWTAccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" required:"true"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	TokenTTL         time.Duration `envconfig:"TOKEN_TTL" default:"720h"` // 30 дней

	// Auth
	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`

	// Rate limiting for auth endpoints
	RateLimit  int           `envconfig:"RATE_LIMIT" default:"20"`
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"1m"`
}

// Load reads configuration from the environment
func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
