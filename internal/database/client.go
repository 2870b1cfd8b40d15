package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// DB owns the connection pool. All statements use $N placeholders, numbered
// in order of first appearance, which both drivers accept.
type DB struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
	now    func() time.Time
}

func Open(driver, dsn string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty database url")
	}

	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		var err error
		dsn, err = sqliteDSN(dsn)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: conn, driver: driver, logger: logger, now: utcNow}, nil
}

func sqliteDSN(path string) (string, error) {
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create database dir: %w", err)
		}
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path), nil
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Conn exposes the underlying pool for maintenance statements that have no
// query method.
func (d *DB) Conn() *sql.DB {
	return d.db
}

// Queries runs statements directly on the pool, outside any transaction.
func (d *DB) Queries() *Queries {
	return &Queries{q: d.db, now: d.now}
}

// WithTx runs fn inside one transaction. A returned error or a panic rolls
// the whole unit back; nothing fn did is persisted.
func (d *DB) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				d.logger.Error("rollback failed", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err = fn(&Queries{q: tx, now: d.now}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate applies the embedded migration set for this driver.
func (d *DB) Migrate(ctx context.Context) error {
	return NewMigrator(d.db, d.driver, d.logger).Run(ctx)
}

func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
