package provenance

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/queryir"
)

// WhyRow is one price-changing product update and its justification.
type WhyRow struct {
	AuditID     int64            `json:"audit_id"`
	ProductID   int64            `json:"product_id"`
	EntityName  string           `json:"entity_name"`
	OldPrice    audit.NullMoney  `json:"old_price"`
	NewPrice    audit.NullMoney  `json:"new_price"`
	PriceChange audit.NullMoney  `json:"price_change"`
	ChangedAt   time.Time        `json:"changed_at"`
	ChangedBy   audit.NullString `json:"changed_by"`
	Reason      audit.NullString `json:"reason"`
}

// HowRow is one order status transition. HoursInPreviousStatus is nil for
// the first transition of each order.
type HowRow struct {
	AuditID               int64            `json:"audit_id"`
	OrderID               int64            `json:"order_id"`
	Operation             audit.Operation  `json:"operation_type"`
	OldStatus             audit.NullString `json:"old_status"`
	NewStatus             audit.NullString `json:"new_status"`
	ChangedAt             time.Time        `json:"changed_at"`
	ChangedBy             audit.NullString `json:"changed_by"`
	Reason                audit.NullString `json:"reason"`
	HoursInPreviousStatus *float64         `json:"hours_in_previous_status"`
}

// WhereRow is one field-level Audit_Log entry with its actor.
type WhereRow struct {
	AuditID   int64            `json:"audit_id"`
	TableName string           `json:"table_name"`
	RecordID  int64            `json:"record_id"`
	Operation audit.Operation  `json:"operation_type"`
	FieldName audit.NullString `json:"field_name"`
	OldValue  audit.NullString `json:"old_value"`
	NewValue  audit.NullString `json:"new_value"`
	ChangedAt time.Time        `json:"changed_at"`
	Username  audit.NullString `json:"username"`
	Role      audit.NullString `json:"role"`
}

// whereTables are the entity tables WhereView reports on.
var whereTables = []any{"Products", "Orders", "Customers", "Payments"}

// WhyView returns product price updates, newest first.
//
// A row qualifies when it is an UPDATE and the price moved, or when there
// was no previous price. A missing reason does not exclude a row.
func (e *Engine) WhyView(ctx context.Context, r audit.DateRange) ([]WhyRow, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("ap.audit_id")},
			{Expr: queryir.Col("ap.product_id")},
			{Expr: queryir.Coalesce{Args: []queryir.Expr{
				queryir.Col("p.name"), queryir.Col("ap.new_name"), queryir.Col("ap.old_name"),
			}}, As: "entity_name"},
			{Expr: queryir.Col("ap.old_price")},
			{Expr: queryir.Col("ap.new_price")},
			{Expr: queryir.Col("ap.changed_at")},
			{Expr: queryir.Col("u.username")},
			{Expr: queryir.Col("ap.reason")},
		},
		From: queryir.T("Audit_Products", "ap"),
		Joins: []queryir.Join{
			{
				Kind:  queryir.LeftJoin,
				Table: queryir.T("Products", "p"),
				On:    queryir.ColumnCompare{Left: "ap.product_id", Op: queryir.OpEq, Right: "p.product_id"},
			},
			usersJoin("ap"),
		},
		Where: []queryir.Predicate{
			queryir.Equals("ap.operation_type", string(audit.OpUpdate)),
			queryir.Or{Predicates: []queryir.Predicate{
				queryir.ColumnCompare{Left: "ap.old_price", Op: queryir.OpNe, Right: "ap.new_price"},
				queryir.IsNull{Field: "ap.old_price"},
			}},
		},
		OrderBy: []queryir.Order{queryir.Desc("ap.changed_at"), queryir.Desc("ap.audit_id")},
	}.With(rangeFilter("ap.changed_at", r)...)

	out := []WhyRow{}
	err := e.run(ctx, "why view", sel, func(rows *sql.Rows) error {
		var (
			row  WhyRow
			name audit.NullString
		)
		if err := rows.Scan(&row.AuditID, &row.ProductID, &name, &row.OldPrice, &row.NewPrice,
			&row.ChangedAt, &row.ChangedBy, &row.Reason); err != nil {
			return err
		}
		if !priceMoved(row.OldPrice, row.NewPrice) {
			return nil
		}
		row.EntityName = name.Or(fmt.Sprintf("Product #%d", row.ProductID))
		row.PriceChange = row.NewPrice.Sub(row.OldPrice)
		row.ChangedAt = row.ChangedAt.UTC()
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// priceMoved mirrors the WhyView filter: no previous price, or a new price
// different from the old one.
func priceMoved(old, new audit.NullMoney) bool {
	if !old.Valid {
		return true
	}
	return new.Valid && new.Money != old.Money
}

// HowView returns every order status transition ordered by order, then
// time, with the dwell time in the previous status.
//
// Dwell is the full timestamp difference from the previous row of the same
// order, in hours, rounded half away from zero to two decimals.
func (e *Engine) HowView(ctx context.Context, r audit.DateRange) ([]HowRow, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("ao.audit_id")},
			{Expr: queryir.Col("ao.order_id")},
			{Expr: queryir.Col("ao.operation_type")},
			{Expr: queryir.Col("ao.old_status")},
			{Expr: queryir.Col("ao.new_status")},
			{Expr: queryir.Col("ao.changed_at")},
			{Expr: queryir.Col("u.username")},
			{Expr: queryir.Col("ao.reason")},
		},
		From:  queryir.T("Audit_Orders", "ao"),
		Joins: []queryir.Join{usersJoin("ao")},
		OrderBy: []queryir.Order{
			queryir.Asc("ao.order_id"),
			queryir.Asc("ao.changed_at"),
			queryir.Asc("ao.audit_id"),
		},
	}.With(rangeFilter("ao.changed_at", r)...)

	out := []HowRow{}
	err := e.run(ctx, "how view", sel, func(rows *sql.Rows) error {
		var row HowRow
		if err := rows.Scan(&row.AuditID, &row.OrderID, &row.Operation, &row.OldStatus, &row.NewStatus,
			&row.ChangedAt, &row.ChangedBy, &row.Reason); err != nil {
			return err
		}
		row.ChangedAt = row.ChangedAt.UTC()
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(out); i++ {
		if out[i].OrderID != out[i-1].OrderID {
			continue
		}
		h := DwellHours(out[i-1].ChangedAt, out[i].ChangedAt)
		out[i].HoursInPreviousStatus = &h
	}
	return out, nil
}

// DwellHours returns the hours between from and to, rounded half away from
// zero to two decimals.
func DwellHours(from, to time.Time) float64 {
	return math.Round(to.Sub(from).Hours()*100) / 100
}

// WhereView returns field-level changes to the entity tables with the
// acting user's name and role, newest first.
func (e *Engine) WhereView(ctx context.Context, r audit.DateRange) ([]WhereRow, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("al.audit_id")},
			{Expr: queryir.Col("al.table_name")},
			{Expr: queryir.Col("al.record_id")},
			{Expr: queryir.Col("al.operation_type")},
			{Expr: queryir.Col("al.field_name")},
			{Expr: queryir.Col("al.old_value")},
			{Expr: queryir.Col("al.new_value")},
			{Expr: queryir.Col("al.changed_at")},
			{Expr: queryir.Col("u.username")},
			{Expr: queryir.Col("u.role")},
		},
		From:  queryir.T("Audit_Log", "al"),
		Joins: []queryir.Join{usersJoin("al")},
		Where: []queryir.Predicate{
			queryir.In{Field: "al.table_name", Values: whereTables},
		},
		OrderBy: []queryir.Order{queryir.Desc("al.changed_at"), queryir.Desc("al.audit_id")},
	}.With(rangeFilter("al.changed_at", r)...)

	out := []WhereRow{}
	err := e.run(ctx, "where view", sel, func(rows *sql.Rows) error {
		var row WhereRow
		if err := rows.Scan(&row.AuditID, &row.TableName, &row.RecordID, &row.Operation, &row.FieldName,
			&row.OldValue, &row.NewValue, &row.ChangedAt, &row.Username, &row.Role); err != nil {
			return err
		}
		row.ChangedAt = row.ChangedAt.UTC()
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
