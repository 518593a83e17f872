package store

import (
	"fmt"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/queryir"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// RecordColumns lists the typed audit columns of kind, qualified by alias,
// in the order ScanRecord expects them:
//
//	audit_id, <kind>_id, operation_type, old_/new_<field>..., [reason,]
//	changed_by, changed_at
func RecordColumns(kind audit.Kind, alias string) []queryir.Column {
	names := []string{"audit_id", kind.IDColumn(), "operation_type"}
	for _, f := range blankRecord(kind).Fields() {
		names = append(names, "old_"+f.Field, "new_"+f.Field)
	}
	if kind.HasReason() {
		names = append(names, "reason")
	}
	names = append(names, "changed_by", "changed_at")

	cols := make([]queryir.Column, len(names))
	for i, n := range names {
		if alias != "" {
			n = alias + "." + n
		}
		cols[i] = queryir.Column{Expr: queryir.Col(n)}
	}
	return cols
}

// ScanRecord scans one row laid out by RecordColumns into the typed record
// for kind. Extra destinations receive any columns selected after them.
// ChangedAt is normalized to UTC.
func ScanRecord(kind audit.Kind, row RowScanner, extra ...any) (audit.Record, error) {
	switch kind {
	case audit.KindProduct:
		var r audit.ProductAudit
		dest := append([]any{
			&r.AuditID, &r.ProductID, &r.Operation,
			&r.OldName, &r.NewName,
			&r.OldPrice, &r.NewPrice,
			&r.OldStockQuantity, &r.NewStockQuantity,
			&r.OldCategory, &r.NewCategory,
			&r.Reason, &r.ChangedBy, &r.ChangedAt,
		}, extra...)
		if err := row.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan product audit: %w", err)
		}
		r.ChangedAt = r.ChangedAt.UTC()
		return r, nil

	case audit.KindOrder:
		var r audit.OrderAudit
		dest := append([]any{
			&r.AuditID, &r.OrderID, &r.Operation,
			&r.OldStatus, &r.NewStatus,
			&r.OldTotalAmount, &r.NewTotalAmount,
			&r.Reason, &r.ChangedBy, &r.ChangedAt,
		}, extra...)
		if err := row.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan order audit: %w", err)
		}
		r.ChangedAt = r.ChangedAt.UTC()
		return r, nil

	case audit.KindCustomer:
		var r audit.CustomerAudit
		dest := append([]any{
			&r.AuditID, &r.CustomerID, &r.Operation,
			&r.OldName, &r.NewName,
			&r.OldEmail, &r.NewEmail,
			&r.OldPhone, &r.NewPhone,
			&r.ChangedBy, &r.ChangedAt,
		}, extra...)
		if err := row.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan customer audit: %w", err)
		}
		r.ChangedAt = r.ChangedAt.UTC()
		return r, nil

	case audit.KindPayment:
		var r audit.PaymentAudit
		dest := append([]any{
			&r.AuditID, &r.PaymentID, &r.Operation,
			&r.OldAmount, &r.NewAmount,
			&r.OldPaymentStatus, &r.NewPaymentStatus,
			&r.ChangedBy, &r.ChangedAt,
		}, extra...)
		if err := row.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan payment audit: %w", err)
		}
		r.ChangedAt = r.ChangedAt.UTC()
		return r, nil
	}
	return nil, fmt.Errorf("scan audit record: unknown kind %q", kind)
}

func blankRecord(kind audit.Kind) audit.Record {
	switch kind {
	case audit.KindOrder:
		return audit.OrderAudit{}
	case audit.KindCustomer:
		return audit.CustomerAudit{}
	case audit.KindPayment:
		return audit.PaymentAudit{}
	}
	return audit.ProductAudit{}
}
