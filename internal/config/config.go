package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageLocal    = "local"
	StorageSupabase = "supabase"

	MailLog    = "log"
	MailResend = "resend"
	MailSMTP   = "smtp"
)

type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string
	LogLevel    string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Sessions
	JWTSecret        string
	TokenTTL         time.Duration
	PasswordResetTTL time.Duration

	// Fan-out
	ActivityLogEnabled   bool
	NotificationsEnabled bool

	// Uploads
	UploadStorage         string
	UploadDir             string
	MaxUploadBytes        int64
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Mail
	MailTransport string
	MailFrom      string
	ResendAPIKey  string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv reads the environment without validating, for callers that apply
// overrides first.
func FromEnv() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:    getEnv("DATABASE_URL", "data/tickbug.db"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         getDuration("TOKEN_TTL", 24*time.Hour),
		PasswordResetTTL: getDuration("PASSWORD_RESET_TTL", time.Hour),

		ActivityLogEnabled:   getBool("ACTIVITY_LOG_ENABLED", true),
		NotificationsEnabled: getBool("NOTIFICATIONS_ENABLED", true),

		UploadStorage:         getEnv("UPLOAD_STORAGE", StorageLocal),
		UploadDir:             getEnv("UPLOAD_DIR", "data/uploads"),
		MaxUploadBytes:        getInt64("MAX_UPLOAD_BYTES", 10<<20),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "attachments"),

		MailTransport: getEnv("MAIL_TRANSPORT", MailLog),
		MailFrom:      getEnv("MAIL_FROM", "TickBug <noreply@localhost>"),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      int(getInt64("SMTP_PORT", 587)),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.DatabaseDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	switch c.UploadStorage {
	case StorageLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for local storage")
		}
	case StorageSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for supabase storage")
		}
		if c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required for supabase storage")
		}
	default:
		return fmt.Errorf("UPLOAD_STORAGE must be local or supabase, got %q", c.UploadStorage)
	}

	switch c.MailTransport {
	case MailLog:
	case MailResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for the resend transport")
		}
	case MailSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required for the smtp transport")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be log, resend or smtp, got %q", c.MailTransport)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
