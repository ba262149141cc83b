// Package repomanager opens the configured storage backend, applies the
// embedded goose migrations and vends the repositories bound to it.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/gustav-de-Mando/KuratorV1/internal/filex"
	"github.com/gustav-de-Mando/KuratorV1/internal/migrations"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/negotiations"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/treaties"
)

// Storage drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// RepositoryManager vends the stores used by the services.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Negotiations() negotiations.Store
	Treaties() treaties.Repository
	Close() error
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

var sqlOpen = sql.Open

// Open returns the manager for driver. Pending negotiations always live in
// memory; only accepted treaties are persisted by the SQL backends.
func Open(driver, dsn string) (RepositoryManager, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryRepositoryManager(), nil
	case DriverSQLite, DriverPgx:
		if path := sqliteFile(driver, dsn); path != "" {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, fmt.Errorf("prepare sqlite file: %w", err)
			}
		}
		db, err := sqlOpen(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		if driver == DriverSQLite {
			// a single writer avoids SQLITE_BUSY between the sweeper and finalization
			db.SetMaxOpenConns(1)
		}
		return NewSQLRepositoryManager(db, driver), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// sqliteFile returns the database file a SQLite DSN points at, or "" for
// in-memory databases and other drivers.
func sqliteFile(driver, dsn string) string {
	if driver != DriverSQLite {
		return ""
	}
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return ""
	}
	return path
}

// MemoryRepositoryManager keeps everything in process memory.
type MemoryRepositoryManager struct {
	negotiations *negotiations.MemoryStore
	treaties     *treaties.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		negotiations: negotiations.NewMemoryStore(),
		treaties:     treaties.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *MemoryRepositoryManager) Negotiations() negotiations.Store       { return m.negotiations }
func (m *MemoryRepositoryManager) Treaties() treaties.Repository          { return m.treaties }
func (m *MemoryRepositoryManager) Close() error                           { return nil }

// SQLRepositoryManager persists active treaties in PostgreSQL or SQLite.
type SQLRepositoryManager struct {
	db           *sql.DB
	driver       string
	negotiations *negotiations.MemoryStore
	treaties     *treaties.SQLRepository
}

func NewSQLRepositoryManager(db *sql.DB, driver string) *SQLRepositoryManager {
	dialect := treaties.Postgres
	if driver == DriverSQLite {
		dialect = treaties.SQLite
	}
	return &SQLRepositoryManager{
		db:           db,
		driver:       driver,
		negotiations: negotiations.NewMemoryStore(),
		treaties:     treaties.NewSQLRepository(db, dialect),
	}
}

func gooseDialect(driver string) string {
	if driver == DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(gooseDialect(m.driver)); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) Negotiations() negotiations.Store { return m.negotiations }
func (m *SQLRepositoryManager) Treaties() treaties.Repository    { return m.treaties }
func (m *SQLRepositoryManager) Close() error                     { return m.db.Close() }
