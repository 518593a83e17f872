package provenance

import (
	"context"
	"fmt"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/queryir"
	"github.com/roach88/auditlens/internal/store"
)

// ChangeCount is the number of Audit_Log entries for one table and
// operation.
type ChangeCount struct {
	TableName string          `db:"table_name" json:"table_name"`
	Operation audit.Operation `db:"operation_type" json:"operation_type"`
	Count     int64           `db:"change_count" json:"change_count"`
}

// UserActivity is the number of Audit_Log entries attributed to one user.
type UserActivity struct {
	Username     string `db:"username" json:"username"`
	Role         string `db:"role" json:"role"`
	TotalChanges int64  `db:"total_changes" json:"total_changes"`
}

// ChangeSummary counts Audit_Log entries by table and operation, ordered
// by table then operation.
func (e *Engine) ChangeSummary(ctx context.Context, r audit.DateRange) ([]ChangeCount, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("al.table_name"), As: "table_name"},
			{Expr: queryir.Col("al.operation_type"), As: "operation_type"},
			{Expr: queryir.Count{}, As: "change_count"},
		},
		From:    queryir.T("Audit_Log", "al"),
		GroupBy: []queryir.Expr{queryir.Col("al.table_name"), queryir.Col("al.operation_type")},
		OrderBy: []queryir.Order{queryir.Asc("al.table_name"), queryir.Asc("al.operation_type")},
	}.With(rangeFilter("al.changed_at", r)...)

	out, err := store.SelectAll[ChangeCount](ctx, e.q, e.compiler, sel)
	if err != nil {
		return nil, fmt.Errorf("change summary: %w", err)
	}
	return out, nil
}

// UserActivity counts Audit_Log entries per user. Users with no changes in
// the range are listed with zero. Ordered by count descending, then
// username.
func (e *Engine) UserActivity(ctx context.Context, r audit.DateRange) ([]UserActivity, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	// Range bounds belong in the join condition; in WHERE they would drop
	// the zero-count users.
	on := []queryir.Predicate{
		queryir.ColumnCompare{Left: "u.user_id", Op: queryir.OpEq, Right: "al.changed_by"},
	}
	on = append(on, rangeFilter("al.changed_at", r)...)

	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("u.username"), As: "username"},
			{Expr: queryir.Col("u.role"), As: "role"},
			{Expr: queryir.Count{Arg: queryir.Col("al.audit_id")}, As: "total_changes"},
		},
		From: queryir.T("Users", "u"),
		Joins: []queryir.Join{{
			Kind:  queryir.LeftJoin,
			Table: queryir.T("Audit_Log", "al"),
			On:    queryir.And{Predicates: on},
		}},
		GroupBy: []queryir.Expr{queryir.Col("u.user_id"), queryir.Col("u.username"), queryir.Col("u.role")},
		OrderBy: []queryir.Order{queryir.Desc("total_changes"), queryir.Asc("u.username")},
	}

	out, err := store.SelectAll[UserActivity](ctx, e.q, e.compiler, sel)
	if err != nil {
		return nil, fmt.Errorf("user activity: %w", err)
	}
	return out, nil
}
