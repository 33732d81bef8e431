package config

import (
	"flag"
	"os"
	"time"

	"github.com/MohamedLemine13/JobPortal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-m int      max consecutive failed logins before lockout
//	-l int      lockout duration, minutes
//	-w int      session sweep interval, minutes
//	-o string   log backend ("slog" or "zap")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-r", "-m", "-l", "-w", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	lockoutDuration := fs.Int("l", int(config.LockoutDuration.Minutes()), "lockout duration (in minutes)")
	sweepInterval := fs.Int("w", int(config.SessionSweepInterval.Minutes()), "session sweep interval (in minutes)")

	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "max failed login attempts")
	fs.StringVar(&config.LogBackend, "o", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	config.LockoutDuration = time.Duration(*lockoutDuration) * time.Minute
	config.SessionSweepInterval = time.Duration(*sweepInterval) * time.Minute
}
