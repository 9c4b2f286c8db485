package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration required by the service.
type Config struct {
	DBURL         string
	Addr          string
	AdminKey      string        // shared secret for the moderation surface
	SessionSecret string        // HMAC secret for auth-provider session tokens
	SweepInterval time.Duration // how often the retention sweeper runs
	RetentionDays int           // events are deleted this long after their date
}

// Load reads required values from environment variables, after merging in a
// local .env file when present.
func Load() (Config, error) {
	// .env is a dev convenience; a missing file is not an error.
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return Config{}, errors.New("DB_URL required")
	}

	adminKey := strings.TrimSpace(os.Getenv("ADMIN_KEY"))
	if adminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = ":8080"
	}

	sweepInterval := time.Hour
	if raw := strings.TrimSpace(os.Getenv("SWEEP_INTERVAL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, errors.New(`SWEEP_INTERVAL must be a positive duration like "1h"`)
		}
		sweepInterval = d
	}

	return Config{
		DBURL:         dbURL,
		Addr:          addr,
		AdminKey:      adminKey,
		SessionSecret: sessionSecret,
		SweepInterval: sweepInterval,
		RetentionDays: 30,
	}, nil
}
