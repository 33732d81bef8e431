package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from environment variables, first loading a .env
// file from the working directory if one exists. Unset variables leave the
// current value untouched; malformed numeric values are ignored the same
// way, so a bad .env cannot zero out a default.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("LOG_BACKEND"); v != "" {
		config.LogBackend = v
	}

	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_VALIDITY")
	setDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_VALIDITY")
	setDuration(&config.LockoutDuration, "LOCKOUT_DURATION")
	setDuration(&config.SessionSweepInterval, "SESSION_SWEEP_INTERVAL")

	if v := os.Getenv("MAX_LOGIN_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaxLoginAttempts = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}
