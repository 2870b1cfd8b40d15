package commands

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"tickbug-backend/internal/config"
)

func TestNewLoggerLevel(t *testing.T) {
	ctx := context.Background()

	logger := newLogger(&config.Config{LogLevel: "debug", Environment: "development"})
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))

	logger = newLogger(&config.Config{LogLevel: "warn", Environment: "production"})
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	logger = newLogger(&config.Config{LogLevel: "chatty"})
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "user", "report", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
