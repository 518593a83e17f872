package audit

import (
	"time"
)

// Header holds the columns every audit table shares.
type Header struct {
	AuditID   int64     `json:"audit_id"`
	Operation Operation `json:"operation_type"`
	ChangedBy NullInt64 `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// Meta returns the shared header; promoted to every record type.
func (h Header) Meta() Header { return h }

// Before orders headers by (ChangedAt, AuditID) ascending.
func (h Header) Before(other Header) bool {
	if !h.ChangedAt.Equal(other.ChangedAt) {
		return h.ChangedAt.Before(other.ChangedAt)
	}
	return h.AuditID < other.AuditID
}

// Record is implemented by the four typed audit variants.
type Record interface {
	Kind() Kind
	EntityID() int64
	Meta() Header
	Justification() NullString
	// Fields returns every tracked old/new pair in display order.
	Fields() []FieldChange
}

// FieldChange is one tracked field's before/after snapshot. Old and New are
// nil when the snapshot is null, otherwise string, int64 or Money.
type FieldChange struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Changed reports whether the snapshots differ. Null and non-null differ.
func (c FieldChange) Changed() bool {
	return c.Old != c.New
}

// Changes returns only the fields whose old and new snapshots differ.
func Changes(r Record) []FieldChange {
	var out []FieldChange
	for _, f := range r.Fields() {
		if f.Changed() {
			out = append(out, f)
		}
	}
	return out
}

// IsNoOp reports an UPDATE in which no tracked field changed.
func IsNoOp(r Record) bool {
	return r.Meta().Operation == OpUpdate && len(Changes(r)) == 0
}

func pair(field, label string, old, new interface{ display() any }) FieldChange {
	return FieldChange{Field: field, Label: label, Old: old.display(), New: new.display()}
}

// ProductAudit is one row of Audit_Products.
type ProductAudit struct {
	Header
	ProductID        int64      `json:"product_id"`
	OldName          NullString `json:"old_name"`
	NewName          NullString `json:"new_name"`
	OldPrice         NullMoney  `json:"old_price"`
	NewPrice         NullMoney  `json:"new_price"`
	OldStockQuantity NullInt64  `json:"old_stock_quantity"`
	NewStockQuantity NullInt64  `json:"new_stock_quantity"`
	OldCategory      NullString `json:"old_category"`
	NewCategory      NullString `json:"new_category"`
	Reason           NullString `json:"reason"`
}

func (ProductAudit) Kind() Kind { return KindProduct }
func (r ProductAudit) EntityID() int64 { return r.ProductID }
func (r ProductAudit) Justification() NullString { return r.Reason }

func (r ProductAudit) Fields() []FieldChange {
	return []FieldChange{
		pair("name", "Name", r.OldName, r.NewName),
		pair("price", "Price", r.OldPrice, r.NewPrice),
		pair("stock_quantity", "Stock", r.OldStockQuantity, r.NewStockQuantity),
		pair("category", "Category", r.OldCategory, r.NewCategory),
	}
}

// OrderAudit is one row of Audit_Orders.
type OrderAudit struct {
	Header
	OrderID        int64      `json:"order_id"`
	OldStatus      NullString `json:"old_status"`
	NewStatus      NullString `json:"new_status"`
	OldTotalAmount NullMoney  `json:"old_total_amount"`
	NewTotalAmount NullMoney  `json:"new_total_amount"`
	Reason         NullString `json:"reason"`
}

func (OrderAudit) Kind() Kind { return KindOrder }
func (r OrderAudit) EntityID() int64 { return r.OrderID }
func (r OrderAudit) Justification() NullString { return r.Reason }

func (r OrderAudit) Fields() []FieldChange {
	return []FieldChange{
		pair("status", "Status", r.OldStatus, r.NewStatus),
		pair("total_amount", "Total", r.OldTotalAmount, r.NewTotalAmount),
	}
}

// CustomerAudit is one row of Audit_Customers.
type CustomerAudit struct {
	Header
	CustomerID int64      `json:"customer_id"`
	OldName    NullString `json:"old_name"`
	NewName    NullString `json:"new_name"`
	OldEmail   NullString `json:"old_email"`
	NewEmail   NullString `json:"new_email"`
	OldPhone   NullString `json:"old_phone"`
	NewPhone   NullString `json:"new_phone"`
}

func (CustomerAudit) Kind() Kind { return KindCustomer }
func (r CustomerAudit) EntityID() int64 { return r.CustomerID }
func (CustomerAudit) Justification() NullString { return NullString{} }

func (r CustomerAudit) Fields() []FieldChange {
	return []FieldChange{
		pair("name", "Name", r.OldName, r.NewName),
		pair("email", "Email", r.OldEmail, r.NewEmail),
		pair("phone", "Phone", r.OldPhone, r.NewPhone),
	}
}

// PaymentAudit is one row of Audit_Payments.
type PaymentAudit struct {
	Header
	PaymentID        int64      `json:"payment_id"`
	OldAmount        NullMoney  `json:"old_amount"`
	NewAmount        NullMoney  `json:"new_amount"`
	OldPaymentStatus NullString `json:"old_payment_status"`
	NewPaymentStatus NullString `json:"new_payment_status"`
}

func (PaymentAudit) Kind() Kind { return KindPayment }
func (r PaymentAudit) EntityID() int64 { return r.PaymentID }
func (PaymentAudit) Justification() NullString { return NullString{} }

func (r PaymentAudit) Fields() []FieldChange {
	return []FieldChange{
		pair("amount", "Amount", r.OldAmount, r.NewAmount),
		pair("payment_status", "Status", r.OldPaymentStatus, r.NewPaymentStatus),
	}
}

var (
	_ Record = ProductAudit{}
	_ Record = OrderAudit{}
	_ Record = CustomerAudit{}
	_ Record = PaymentAudit{}
)
