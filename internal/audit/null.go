package audit

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// NullString is a nullable text snapshot.
type NullString struct {
	String string
	Valid  bool
}

// StringOf returns a valid NullString.
func StringOf(s string) NullString { return NullString{String: s, Valid: true} }

// Scan implements sql.Scanner.
func (n *NullString) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	n.String, n.Valid = ns.String, ns.Valid
	return nil
}

// Value implements driver.Valuer.
func (n NullString) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.String, nil
}

// MarshalJSON renders null or the string.
func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

// Or returns the string, or fallback when null.
func (n NullString) Or(fallback string) string {
	if !n.Valid {
		return fallback
	}
	return n.String
}

// NullInt64 is a nullable integer snapshot.
type NullInt64 struct {
	Int64 int64
	Valid bool
}

// Int64Of returns a valid NullInt64.
func Int64Of(v int64) NullInt64 { return NullInt64{Int64: v, Valid: true} }

// Scan implements sql.Scanner.
func (n *NullInt64) Scan(src any) error {
	var ni sql.NullInt64
	if err := ni.Scan(src); err != nil {
		return err
	}
	n.Int64, n.Valid = ni.Int64, ni.Valid
	return nil
}

// Value implements driver.Valuer.
func (n NullInt64) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Int64, nil
}

// MarshalJSON renders null or the number.
func (n NullInt64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Int64, 10)), nil
}

// String renders the value, or "" when null.
func (n NullInt64) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

// NullMoney is a nullable monetary snapshot.
type NullMoney struct {
	Money Money
	Valid bool
}

// MoneyOf returns a valid NullMoney.
func MoneyOf(m Money) NullMoney { return NullMoney{Money: m, Valid: true} }

// Scan implements sql.Scanner.
func (n *NullMoney) Scan(src any) error {
	if src == nil {
		n.Money, n.Valid = 0, false
		return nil
	}
	if err := n.Money.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements driver.Valuer.
func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.Value()
}

// MarshalJSON renders null or the decimal string.
func (n NullMoney) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Money.MarshalJSON()
}

// Sub returns n - other, null when either side is null.
func (n NullMoney) Sub(other NullMoney) NullMoney {
	if !n.Valid || !other.Valid {
		return NullMoney{}
	}
	return MoneyOf(n.Money - other.Money)
}

// display returns a comparable, printable form used for diffs.
func (n NullString) display() any {
	if !n.Valid {
		return nil
	}
	return n.String
}

func (n NullInt64) display() any {
	if !n.Valid {
		return nil
	}
	return n.Int64
}

func (n NullMoney) display() any {
	if !n.Valid {
		return nil
	}
	return n.Money
}

// formatNullable renders a snapshot value for Audit_Log text columns.
func formatNullable(v any) NullString {
	switch x := v.(type) {
	case nil:
		return NullString{}
	case string:
		return StringOf(x)
	case int64:
		return StringOf(strconv.FormatInt(x, 10))
	case Money:
		return StringOf(x.String())
	default:
		return StringOf(fmt.Sprint(x))
	}
}
