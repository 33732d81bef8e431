package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/MohamedLemine13/JobPortal/internal/flagx"
	"github.com/MohamedLemine13/JobPortal/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. It uses
// timex.Duration for interval fields, which allows parsing both string
// values such as "15m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config struct.
type JsonConfig struct {
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	MaxLoginAttempts             *int            `json:"max_login_attempts"`
	LockoutDuration              *timex.Duration `json:"lockout_duration"`
	SessionSweepInterval         *timex.Duration `json:"session_sweep_interval"`
	LogBackend                   *string         `json:"log_backend"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c or -config flags; if neither is
// set, no JSON file is loaded. Absent keys leave the current value in
// place. An unreadable or malformed file panics — a half-applied config is
// worse than refusing to start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	}
	if c.MaxLoginAttempts != nil {
		config.MaxLoginAttempts = *c.MaxLoginAttempts
	}
	if c.LockoutDuration != nil {
		config.LockoutDuration = time.Duration(c.LockoutDuration.Duration)
	}
	if c.SessionSweepInterval != nil {
		config.SessionSweepInterval = time.Duration(c.SessionSweepInterval.Duration)
	}
	if c.LogBackend != nil {
		config.LogBackend = *c.LogBackend
	}
}
