package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/auth"
	"tickbug-backend/internal/config"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/mailer"
	"tickbug-backend/internal/notify"
	"tickbug-backend/internal/services"
	"tickbug-backend/internal/storage"
)

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.DB
	tokens *auth.Issuer
	svc    *services.Services
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromEnv()
	flags := cmd.Flags()
	if v, _ := flags.GetString("database-driver"); v != "" {
		cfg.DatabaseDriver = v
	}
	if v, _ := flags.GetString("database-url"); v != "" {
		cfg.DatabaseURL = v
	}
	if flags.Lookup("port") != nil {
		if v, _ := flags.GetString("port"); v != "" {
			cfg.Port = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes text in development and JSON in production.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openApp loads configuration, opens and migrates the database and builds
// the services. Callers close the returned app.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(commandContext(cmd)); err != nil {
		db.Close()
		return nil, err
	}

	store, err := storage.New(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	mail, err := mailer.New(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := services.New(services.Deps{
		DB:       db,
		Config:   cfg,
		Activity: activity.NewRecorder(cfg.ActivityLogEnabled),
		Notifier: notify.New(db, mail, cfg.BaseURL, cfg.NotificationsEnabled, logger),
		Files:    store,
		Tokens:   tokens,
		Logger:   logger,
	})
	return &app{cfg: cfg, logger: logger, db: db, tokens: tokens, svc: svc}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
