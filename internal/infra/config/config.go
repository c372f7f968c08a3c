package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabasePath   string
	HTTPListenAddr string
	LogLevel       string
	Environment    string

	// Telegram bot; the channel is disabled when the token is empty.
	TelegramToken string

	// SMTP for the email channel; disabled when the host is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Scheduler cron specs
	CronSpecMaterialize string
	CronSpecPromote     string
	// MaterializeHorizon is how far ahead reminders are created.
	MaterializeHorizon time.Duration

	// Profile picture uploads
	UploadDir      string
	UploadMaxBytes int64

	// Rate limiting for the abuse-prone routes
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is not set")
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost != "" {
		portStr := os.Getenv("SMTP_PORT")
		if portStr == "" {
			portStr = "587"
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
		cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
		cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
		cfg.SMTPFrom = os.Getenv("SMTP_FROM")
		if cfg.SMTPFrom == "" {
			return nil, fmt.Errorf("SMTP_FROM is not set but SMTP_HOST is configured")
		}
	}

	cfg.CronSpecMaterialize = os.Getenv("CRON_SPEC_MATERIALIZE")
	if cfg.CronSpecMaterialize == "" {
		cfg.CronSpecMaterialize = "0 0 * * *" // Default: midnight daily
	}
	cfg.CronSpecPromote = os.Getenv("CRON_SPEC_PROMOTE")
	if cfg.CronSpecPromote == "" {
		cfg.CronSpecPromote = "* * * * *" // Default: every minute
	}

	cfg.MaterializeHorizon = 48 * time.Hour
	if horizonStr := os.Getenv("MATERIALIZE_HORIZON"); horizonStr != "" {
		horizon, err := time.ParseDuration(horizonStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MATERIALIZE_HORIZON: %w", err)
		}
		cfg.MaterializeHorizon = horizon
	}

	cfg.UploadDir = os.Getenv("UPLOAD_DIR")
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	cfg.UploadMaxBytes = 5 << 20 // 5 MiB
	if maxStr := os.Getenv("UPLOAD_MAX_BYTES"); maxStr != "" {
		max, err := strconv.ParseInt(maxStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
		}
		cfg.UploadMaxBytes = max
	}

	cfg.RateLimitRequests = 10
	if reqStr := os.Getenv("RATE_LIMIT_REQUESTS"); reqStr != "" {
		requests, err := strconv.Atoi(reqStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
		}
		cfg.RateLimitRequests = requests
	}

	cfg.RateLimitWindow = time.Minute
	if windowStr := os.Getenv("RATE_LIMIT_WINDOW"); windowStr != "" {
		window, err := time.ParseDuration(windowStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
		}
		cfg.RateLimitWindow = window
	}

	return cfg, nil
}
