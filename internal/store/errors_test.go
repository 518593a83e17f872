package store

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

// safeBuffer is a bytes.Buffer safe for concurrent log writes.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, CodeUnavailable},
		{"canceled wrapped", fmt.Errorf("fetch: %w", context.Canceled), CodeUnavailable},
		{"bad conn", driver.ErrBadConn, CodeUnavailable},
		{"conn done", sql.ErrConnDone, CodeUnavailable},
		{"closed", ErrClosed, CodeUnavailable},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, CodeUnavailable},
		{"sqlite cant open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, CodeUnavailable},
		{"sqlite syntax", sqlite3.Error{Code: sqlite3.ErrError}, CodeQueryFailure},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, CodeQueryFailure},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, CodeUnavailable},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, CodeUnavailable},
		{"pg syntax", &pgconn.PgError{Code: "42601"}, CodeQueryFailure},
		{"pg unique", &pgconn.PgError{Code: "23505"}, CodeQueryFailure},
		{"net timeout", timeoutErr{}, CodeUnavailable},
		{"scan error", errors.New("sql: Scan error on column index 0"), CodeQueryFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("op", tt.err)
			var se *StoreError
			if assert.ErrorAs(t, err, &se) {
				assert.Equal(t, tt.want, se.Code)
				assert.Equal(t, "op", se.Op)
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, Classify("op", nil))
}

func TestClassify_KeepsExistingClassification(t *testing.T) {
	orig := &StoreError{Code: CodeUnavailable, Op: "connect", Err: errors.New("refused")}
	wrapped := fmt.Errorf("why view: %w", orig)

	got := Classify("scan", wrapped)
	assert.Same(t, wrapped, got)
	assert.True(t, IsUnavailable(got))
}

func TestStoreError_Message(t *testing.T) {
	err := &StoreError{Code: CodeQueryFailure, Op: "query", Err: errors.New("near \"SELEC\": syntax error")}
	assert.Equal(t, `QUERY_FAILURE: query: near "SELEC": syntax error`, err.Error())

	err.Op = ""
	assert.Equal(t, `QUERY_FAILURE: near "SELEC": syntax error`, err.Error())
}

func TestIsHelpers_NonStoreErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.False(t, IsUnavailable(plain))
	assert.False(t, IsQueryFailure(plain))
	assert.False(t, IsUnavailable(nil))
}
