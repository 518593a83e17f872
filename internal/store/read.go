package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/roach88/auditlens/internal/queryir"
	"github.com/roach88/auditlens/internal/querysql"
)

// Select compiles q, runs it on db and calls scan once per row in result
// order. Compile, driver and scan failures all leave as *StoreError.
//
// Callers own result ordering: the compiler rejects a query without
// ORDER BY.
func Select(ctx context.Context, db Querier, c *querysql.Compiler, q queryir.Query, scan func(*sql.Rows) error) error {
	query, args, err := c.Compile(q)
	if err != nil {
		return &StoreError{Code: CodeQueryFailure, Op: "compile", Err: err}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return Classify("select", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return Classify("scan", err)
		}
	}
	if err := rows.Err(); err != nil {
		return Classify("iterate", err)
	}
	return nil
}

// SelectAll compiles and runs q, mapping each row onto T by column name
// (db struct tags). Every selected column needs an output name and a
// matching field.
//
// Returns an empty slice (not nil) when no rows match.
func SelectAll[T any](ctx context.Context, db Querier, c *querysql.Compiler, q queryir.Query) ([]T, error) {
	query, args, err := c.Compile(q)
	if err != nil {
		return nil, &StoreError{Code: CodeQueryFailure, Op: "compile", Err: err}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify("select", err)
	}
	defer rows.Close()

	var out []T
	if err := sqlscan.ScanAll(&out, rows); err != nil {
		return nil, Classify("scan", fmt.Errorf("scan %T: %w", out, err))
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
