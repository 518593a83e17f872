package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/auditlens/internal/audit"
)

var (
	// ErrNoOpUpdate is returned for an UPDATE that changes no tracked field.
	ErrNoOpUpdate = errors.New("update changes no tracked field")

	// ErrInvalidRecord is returned for audit records that break the
	// INSERT/UPDATE/DELETE snapshot rules.
	ErrInvalidRecord = errors.New("invalid audit record")
)

// AppendAudit writes one typed audit record and its Audit_Log decomposition
// in a single transaction, returning the assigned audit_id.
//
// Validation happens before any write: the operation must be known, the
// timestamp set, INSERT must carry no old snapshot, DELETE no new snapshot,
// and UPDATE must change at least one field.
func (s *Store) AppendAudit(ctx context.Context, rec audit.Record) (int64, error) {
	if err := checkRecord(rec); err != nil {
		return 0, &StoreError{Code: CodeQueryFailure, Op: "append audit", Err: err}
	}
	if s.closed.Load() {
		return 0, &StoreError{Code: CodeUnavailable, Op: "append audit", Err: ErrClosed}
	}

	table, cols, vals := auditColumns(rec)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING audit_id",
		table, strings.Join(cols, ", "), placeholders(len(cols)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Classify("append audit: begin", err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, s.rebind(query), vals...).Scan(&id); err != nil {
		return 0, Classify("append audit: insert "+table, err)
	}

	for _, entry := range audit.Decompose(rec) {
		if _, err := s.insertLogEntry(ctx, tx, entry); err != nil {
			return 0, Classify("append audit: log entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, Classify("append audit: commit", err)
	}
	return id, nil
}

// AppendLogEntry writes a single generic Audit_Log entry, for changes with
// no typed audit table (for example Users).
func (s *Store) AppendLogEntry(ctx context.Context, e audit.LogEntry) (int64, error) {
	if !e.Operation.Valid() || e.ChangedAt.IsZero() || e.TableName == "" {
		return 0, &StoreError{Code: CodeQueryFailure, Op: "append log entry", Err: ErrInvalidRecord}
	}
	if s.closed.Load() {
		return 0, &StoreError{Code: CodeUnavailable, Op: "append log entry", Err: ErrClosed}
	}
	id, err := s.insertLogEntry(ctx, s.db, e)
	if err != nil {
		return 0, Classify("append log entry", err)
	}
	return id, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) insertLogEntry(ctx context.Context, q rowQuerier, e audit.LogEntry) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(`
		INSERT INTO Audit_Log
		(table_name, record_id, operation_type, field_name, old_value, new_value, changed_at, changed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING audit_id
	`),
		e.TableName,
		e.RecordID,
		string(e.Operation),
		e.FieldName,
		e.OldValue,
		e.NewValue,
		e.ChangedAt.UTC(),
		e.ChangedBy,
	).Scan(&id)
	return id, err
}

// auditColumns maps a record onto its audit table's columns. Snapshot
// columns come from Fields(), so every variant shares one code path.
func auditColumns(rec audit.Record) (string, []string, []any) {
	meta := rec.Meta()
	kind := rec.Kind()

	cols := []string{kind.IDColumn(), "operation_type"}
	vals := []any{rec.EntityID(), string(meta.Operation)}

	for _, f := range rec.Fields() {
		cols = append(cols, "old_"+f.Field, "new_"+f.Field)
		vals = append(vals, f.Old, f.New)
	}
	if kind.HasReason() {
		cols = append(cols, "reason")
		vals = append(vals, rec.Justification())
	}

	cols = append(cols, "changed_by", "changed_at")
	vals = append(vals, meta.ChangedBy, meta.ChangedAt.UTC())
	return kind.AuditTable(), cols, vals
}

func checkRecord(rec audit.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	meta := rec.Meta()
	if !meta.Operation.Valid() {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidRecord, meta.Operation)
	}
	if meta.ChangedAt.IsZero() {
		return fmt.Errorf("%w: changed_at is required", ErrInvalidRecord)
	}
	if rec.EntityID() <= 0 {
		return fmt.Errorf("%w: %s id must be positive", ErrInvalidRecord, rec.Kind())
	}

	for _, f := range rec.Fields() {
		switch {
		case meta.Operation == audit.OpInsert && f.Old != nil:
			return fmt.Errorf("%w: INSERT with old_%s", ErrInvalidRecord, f.Field)
		case meta.Operation == audit.OpDelete && f.New != nil:
			return fmt.Errorf("%w: DELETE with new_%s", ErrInvalidRecord, f.Field)
		}
	}
	if audit.IsNoOp(rec) {
		return fmt.Errorf("%s %d: %w", rec.Kind(), rec.EntityID(), ErrNoOpUpdate)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
