package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrorCode categorizes store failures.
type ErrorCode string

const (
	// CodeUnavailable means the store could not be reached or stopped
	// responding. Fatal for the current request; not retried here.
	CodeUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// CodeQueryFailure means the store was reached but rejected the
	// statement: malformed SQL, constraint violation, bad scan.
	CodeQueryFailure ErrorCode = "QUERY_FAILURE"
)

// StoreError is the single error type leaving this package.
type StoreError struct {
	Code ErrorCode
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap exposes the driver error to errors.Is and errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsUnavailable returns true if err is a store-unavailable error.
// Uses errors.As to handle wrapped errors.
func IsUnavailable(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == CodeUnavailable
	}
	return false
}

// IsQueryFailure returns true if err is a query-failure error.
// Uses errors.As to handle wrapped errors.
func IsQueryFailure(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == CodeQueryFailure
	}
	return false
}

// Classify wraps a driver error in a *StoreError. Errors that already carry
// a classification are returned unchanged; nil stays nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	code := CodeQueryFailure
	if unavailable(err) {
		code = CodeUnavailable
	}
	return &StoreError{Code: code, Op: op, Err: err}
}

// unavailable reports connectivity failures across both drivers.
func unavailable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, ErrClosed):
		return true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked,
			sqlite3.ErrIoErr, sqlite3.ErrNotADB, sqlite3.ErrPerm:
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception. 57P0x: server shutting down.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
