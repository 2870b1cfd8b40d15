package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, time.Hour, cfg.PasswordResetTTL)
	assert.True(t, cfg.ActivityLogEnabled)
	assert.True(t, cfg.NotificationsEnabled)
	assert.Equal(t, StorageLocal, cfg.UploadStorage)
	assert.Equal(t, MailLog, cfg.MailTransport)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BASE_URL", "https://bugs.example.com/")
	t.Setenv("ACTIVITY_LOG_ENABLED", "false")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://bugs.example.com", cfg.BaseURL)
	assert.False(t, cfg.ActivityLogEnabled)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.EqualValues(t, 1024, cfg.MaxUploadBytes)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:      "s",
			DatabaseDriver: "sqlite3",
			DatabaseURL:    "x.db",
			TokenTTL:       time.Hour,
			MaxUploadBytes: 1,
			UploadStorage:  StorageLocal,
			UploadDir:      "uploads",
			MailTransport:  MailLog,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"supabase without key", func(c *Config) { c.UploadStorage = StorageSupabase; c.SupabaseURL = "https://x" }, "SUPABASE_SERVICE_KEY"},
		{"resend without key", func(c *Config) { c.MailTransport = MailResend }, "RESEND_API_KEY"},
		{"smtp without host", func(c *Config) { c.MailTransport = MailSMTP }, "SMTP_HOST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
