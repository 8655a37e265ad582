package config

import (
	"os"
	"time"
)

var (
	// JWTSecret signs session tokens. Override via JWT_SECRET in any
	// deployed environment.
	JWTSecret []byte

	JWTExpiration = 7 * 24 * time.Hour
)

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "writium-dev-secret"
	}
	JWTSecret = []byte(secret)
}
