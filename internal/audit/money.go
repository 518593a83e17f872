package audit

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Money is an amount in integer cents.
type Money int64

// ErrInvalidMoney is returned when a decimal amount cannot be parsed exactly.
var ErrInvalidMoney = errors.New("invalid money amount")

// ParseMoney parses a decimal with at most two fractional digits ("12", "12.5", "-0.99").
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || whole[0] < '0' || whole[0] > '9' || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
		}
	}
	total := units*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// MustMoney is ParseMoney for literals in tests and fixtures.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String renders the amount as a plain decimal ("1234.50").
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Float returns the amount in currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Scan implements sql.Scanner. SQLite returns REAL or INTEGER for NUMERIC
// columns; Postgres returns NUMERIC as text.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*m = Money(v * 100)
	case float64:
		*m = Money(math.Round(v * 100))
	case []byte:
		parsed, err := ParseMoney(trimZeros(string(v)))
		if err != nil {
			return err
		}
		*m = parsed
	case string:
		parsed, err := ParseMoney(trimZeros(v))
		if err != nil {
			return err
		}
		*m = parsed
	default:
		return fmt.Errorf("scan money: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// MarshalJSON renders the amount as a JSON string to keep it exact.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalYAML accepts 12, 12.5 or "12.50".
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseMoney(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = parsed
	return nil
}

// trimZeros drops trailing fractional zeros beyond two digits ("12.5000" → "12.50").
func trimZeros(s string) string {
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || len(frac) <= 2 {
		return s
	}
	extra := strings.TrimRight(frac[2:], "0")
	if extra != "" {
		return s
	}
	return whole + "." + frac[:2]
}
