package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlens/internal/querysql"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	assert.Equal(t, querysql.SQLite, s.Dialect())
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	tables := []string{
		"Users", "Customers", "Products", "Orders", "Payments",
		"Audit_Products", "Audit_Orders", "Audit_Customers", "Audit_Payments", "Audit_Log",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.name, tt.expected))
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x", Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestOpen_UnreachableDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "test.db")

	_, err := OpenSQLite(path)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err), "got %v", err)
}

func TestQueryContext_SyntaxErrorIsQueryFailure(t *testing.T) {
	s := createTestStore(t)

	_, err := s.QueryContext(context.Background(), "SELEC audit_id FROM Audit_Log")
	require.Error(t, err)
	assert.True(t, IsQueryFailure(err))
	assert.False(t, IsUnavailable(err))
}

func TestQueryContext_MissingTableIsQueryFailure(t *testing.T) {
	s := createTestStore(t)

	_, err := s.QueryContext(context.Background(), "SELECT x FROM No_Such_Table")
	require.Error(t, err)
	assert.True(t, IsQueryFailure(err))
}

func TestQueryContext_AfterCloseIsUnavailable(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.QueryContext(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, ErrClosed)

	assert.True(t, IsUnavailable(s.Ping(context.Background())))
}

func TestQueryContext_CanceledContextIsUnavailable(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.QueryContext(ctx, "SELECT 1")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryContext_LogsWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	var buf safeBuffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	s, err := Open(context.Background(), Config{DSN: path, LogQueries: true, Logger: logger})
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.QueryContext(context.Background(), "SELECT audit_id FROM Audit_Log WHERE record_id = ?", 1)
	require.NoError(t, err)
	rows.Close()

	out := buf.String()
	assert.Contains(t, out, `"sql":"SELECT audit_id FROM Audit_Log WHERE record_id = ?"`)
	assert.Contains(t, out, `"args":1`)
	assert.Contains(t, out, `"component":"store"`)
}

func TestQueryContext_QuietByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	var buf safeBuffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	s, err := Open(context.Background(), Config{DSN: path, Logger: logger})
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	rows.Close()

	assert.Empty(t, buf.String())
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: querysql.SQLite}
	pg := &Store{dialect: querysql.Postgres}

	q := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)", pg.rebind(q))
}

func TestClose_Twice(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
