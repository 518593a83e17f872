package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/roach88/auditlens/internal/querysql"
)

//go:embed migrations
var migrations embed.FS

// ErrClosed is returned by queries issued after Close.
var ErrClosed = errors.New("store is closed")

// Querier is the query interface every reader depends on. *Store implements
// it; so do *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Config selects and configures the backing database.
type Config struct {
	// Driver is "sqlite3" (default) or "pgx".
	Driver string
	// DSN is a file path for SQLite or a connection string for Postgres.
	DSN string
	// LogQueries logs every statement at debug level.
	LogQueries bool
	// Logger receives query and migration logs. The zero value discards.
	Logger zerolog.Logger
}

// Store provides access to the audit and entity tables.
type Store struct {
	db         *sql.DB
	dialect    querysql.Dialect
	log        zerolog.Logger
	logQueries bool
	closed     atomic.Bool
}

// Open connects to the configured database, applies pragmas (SQLite) and
// runs the embedded migrations.
//
// This function is idempotent - safe to call multiple times on the same
// database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	dialect, err := querysql.DialectForDriver(driver)
	if err != nil {
		return nil, &StoreError{Code: CodeUnavailable, Op: "open", Err: err}
	}
	if dialect == querysql.Postgres {
		driver = "pgx"
	} else {
		driver = "sqlite3"
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, Classify("open", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StoreError{Code: CodeUnavailable, Op: "connect", Err: err}
	}

	if dialect == querysql.SQLite {
		// SQLite only supports one writer at a time.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, Classify("apply pragmas", err)
		}
	}

	if err := migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, Classify("migrate", err)
	}

	s := &Store{
		db:         db,
		dialect:    dialect,
		log:        cfg.Logger.With().Str("component", "store").Str("dialect", dialect.String()).Logger(),
		logQueries: cfg.LogQueries,
	}
	return s, nil
}

// OpenSQLite opens a SQLite store at path with default settings.
func OpenSQLite(path string) (*Store, error) {
	return Open(context.Background(), Config{Driver: "sqlite3", DSN: path, Logger: zerolog.Nop()})
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil || s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect reports the SQL dialect queries must be compiled for.
func (s *Store) Dialect() querysql.Dialect {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return &StoreError{Code: CodeUnavailable, Op: "ping", Err: ErrClosed}
	}
	if err := s.db.PingContext(ctx); err != nil {
		return &StoreError{Code: CodeUnavailable, Op: "ping", Err: err}
	}
	return nil
}

// QueryContext executes a query and returns the resulting rows. Failures are
// classified into *StoreError. Callers are responsible for closing the rows.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.closed.Load() {
		return nil, &StoreError{Code: CodeUnavailable, Op: "query", Err: ErrClosed}
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.logQuery(query, len(args), start, err)
	if err != nil {
		return nil, Classify("query", err)
	}
	return rows, nil
}

func (s *Store) logQuery(query string, nargs int, start time.Time, err error) {
	if !s.logQueries {
		return
	}
	evt := s.log.Debug()
	if err != nil {
		evt = s.log.Warn().Err(err)
	}
	evt.Str("sql", query).
		Int("args", nargs).
		Dur("elapsed", time.Since(start)).
		Msg("query")
}

// rebind rewrites "?" placeholders to "$n" for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != querysql.Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// migrate applies the embedded goose migrations for the dialect.
func migrate(ctx context.Context, db *sql.DB, dialect querysql.Dialect) error {
	dir, gooseDialect := "migrations/sqlite", goose.DialectSQLite3
	if dialect == querysql.Postgres {
		dir, gooseDialect = "migrations/postgres", goose.DialectPostgres
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
