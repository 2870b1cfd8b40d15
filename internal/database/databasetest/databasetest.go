// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/database"
)

// Open returns a migrated database in the test's temp dir. It is closed
// when the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// Exec runs a raw statement, for fixtures such as failure triggers.
func Exec(t testing.TB, db *database.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Conn().Exec(query, args...)
	require.NoError(t, err)
}

// Count runs a COUNT query and returns the result.
func Count(t testing.TB, db *database.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Conn().QueryRow(query, args...).Scan(&n))
	return n
}
