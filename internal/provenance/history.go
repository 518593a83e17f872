package provenance

import (
	"context"
	"database/sql"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/queryir"
	"github.com/roach88/auditlens/internal/store"
)

// HistoryRow is one typed audit record with the acting user's name.
type HistoryRow struct {
	Record   audit.Record     `json:"record"`
	Username audit.NullString `json:"username"`
}

// History returns every audit record of one kind, newest first.
func (e *Engine) History(ctx context.Context, kind audit.Kind, r audit.DateRange) ([]HistoryRow, error) {
	kind, err := audit.ParseKind(string(kind))
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	cols := append(store.RecordColumns(kind, "a"), queryir.Column{Expr: queryir.Col("u.username")})
	sel := queryir.Select{
		Columns: cols,
		From:    queryir.T(kind.AuditTable(), "a"),
		Joins:   []queryir.Join{usersJoin("a")},
		OrderBy: []queryir.Order{queryir.Desc("a.changed_at"), queryir.Desc("a.audit_id")},
	}.With(rangeFilter("a.changed_at", r)...)

	out := []HistoryRow{}
	err = e.run(ctx, string(kind)+" history", sel, func(rows *sql.Rows) error {
		var username audit.NullString
		rec, err := store.ScanRecord(kind, rows, &username)
		if err != nil {
			return err
		}
		out = append(out, HistoryRow{Record: rec, Username: username})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
