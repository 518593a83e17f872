package audit

import (
	"errors"
	"fmt"
	"strings"
)

// Operation is the kind of write an audit record describes.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// ParseOperation accepts an operation name in any letter case.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation %q", s)
	}
	return op, nil
}

// Valid reports whether op is one of INSERT, UPDATE or DELETE.
func (op Operation) Valid() bool {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Scan implements sql.Scanner so operation_type columns scan directly.
func (op *Operation) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan operation: unsupported type %T", src)
	}
	parsed, err := ParseOperation(s)
	if err != nil {
		return fmt.Errorf("scan operation: %w", err)
	}
	*op = parsed
	return nil
}

// Kind identifies one of the audited entity types.
type Kind string

const (
	KindProduct  Kind = "product"
	KindOrder    Kind = "order"
	KindCustomer Kind = "customer"
	KindPayment  Kind = "payment"
)

// Kinds lists every audited entity type in a stable order.
var Kinds = []Kind{KindProduct, KindOrder, KindCustomer, KindPayment}

// ErrUnknownKind is returned for an entity kind that has no audit table.
var ErrUnknownKind = errors.New("unknown entity kind")

// ParseKind accepts a kind in any letter case, singular or plural.
func ParseKind(s string) (Kind, error) {
	k := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch Kind(k) {
	case KindProduct, KindOrder, KindCustomer, KindPayment:
		return Kind(k), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// Label is the display name of the kind ("Product", "Order", ...).
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// EntityTable is the current-state table name, also the table_name value
// written to Audit_Log.
func (k Kind) EntityTable() string {
	return k.Label() + "s"
}

// AuditTable is the per-entity audit table name.
func (k Kind) AuditTable() string {
	return "Audit_" + k.EntityTable()
}

// IDColumn is the primary-key column shared by the entity and audit tables.
func (k Kind) IDColumn() string {
	return string(k) + "_id"
}

// HasReason reports whether the kind's audit table carries a reason column.
func (k Kind) HasReason() bool {
	return k == KindProduct || k == KindOrder
}
