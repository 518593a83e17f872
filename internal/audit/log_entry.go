package audit

import "time"

// LogEntry is one row of the generic Audit_Log table: a single field change
// on a single record.
type LogEntry struct {
	AuditID   int64      `json:"audit_id"`
	TableName string     `json:"table_name"`
	RecordID  int64      `json:"record_id"`
	Operation Operation  `json:"operation_type"`
	FieldName NullString `json:"field_name"`
	OldValue  NullString `json:"old_value"`
	NewValue  NullString `json:"new_value"`
	ChangedAt time.Time  `json:"changed_at"`
	ChangedBy NullInt64  `json:"changed_by"`
}

// Decompose expands a typed audit record into per-field Audit_Log entries.
//
// INSERT yields one entry per field with a non-null new value, DELETE one per
// field with a non-null old value, and UPDATE one per changed field. AuditID
// is left zero; the store assigns it.
func Decompose(r Record) []LogEntry {
	meta := r.Meta()
	entries := make([]LogEntry, 0, len(r.Fields()))
	for _, f := range r.Fields() {
		switch meta.Operation {
		case OpInsert:
			if f.New == nil {
				continue
			}
		case OpDelete:
			if f.Old == nil {
				continue
			}
		default:
			if !f.Changed() {
				continue
			}
		}
		entries = append(entries, LogEntry{
			TableName: r.Kind().EntityTable(),
			RecordID:  r.EntityID(),
			Operation: meta.Operation,
			FieldName: StringOf(f.Field),
			OldValue:  formatNullable(f.Old),
			NewValue:  formatNullable(f.New),
			ChangedAt: meta.ChangedAt,
			ChangedBy: meta.ChangedBy,
		})
	}
	return entries
}
