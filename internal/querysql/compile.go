package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/auditlens/internal/queryir"
)

// Dialect selects placeholder syntax for the target database.
type Dialect int

const (
	// SQLite uses positional "?" placeholders.
	SQLite Dialect = iota
	// Postgres uses numbered "$1" placeholders.
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	}
	return "unknown"
}

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	}
	return 0, fmt.Errorf("unsupported driver %q", driver)
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Compiler compiles query IR to parameterized SQL.
//
// CRITICAL: every query carries an ORDER BY; Validate rejects one without.
// CRITICAL: values are always bound as parameters, never interpolated.
type Compiler struct {
	dialect Dialect
}

// NewCompiler creates a Compiler for the given dialect.
func NewCompiler(d Dialect) *Compiler {
	return &Compiler{dialect: d}
}

// Dialect returns the compiler's target dialect.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// Compile converts a query to SQL and its ordered parameters.
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		sel = *query
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}

	b := &builder{dialect: c.dialect}
	if err := b.selectStmt(sel); err != nil {
		return "", nil, err
	}
	return b.sql.String(), b.params, nil
}

// builder accumulates SQL text and parameters in bind order.
type builder struct {
	dialect Dialect
	sql     strings.Builder
	params  []any
}

func (b *builder) bind(v any) string {
	b.params = append(b.params, v)
	return b.dialect.placeholder(len(b.params))
}

func (b *builder) selectStmt(s queryir.Select) error {
	b.sql.WriteString("SELECT ")
	for i, col := range s.Columns {
		if i > 0 {
			b.sql.WriteString(", ")
		}
		expr, err := b.expr(col.Expr)
		if err != nil {
			return err
		}
		b.sql.WriteString(expr)
		if col.As != "" {
			b.sql.WriteString(" AS " + col.As)
		}
	}

	b.sql.WriteString(" FROM " + table(s.From))

	for _, j := range s.Joins {
		on, err := b.predicate(j.On)
		if err != nil {
			return fmt.Errorf("compile join %s: %w", j.Table.Name, err)
		}
		fmt.Fprintf(&b.sql, " %s %s ON %s", j.Kind, table(j.Table), on)
	}

	if len(s.Where) > 0 {
		parts := make([]string, 0, len(s.Where))
		for _, p := range s.Where {
			frag, err := b.predicate(p)
			if err != nil {
				return fmt.Errorf("compile filter: %w", err)
			}
			parts = append(parts, frag)
		}
		b.sql.WriteString(" WHERE " + strings.Join(parts, " AND "))
	}

	if len(s.GroupBy) > 0 {
		parts := make([]string, 0, len(s.GroupBy))
		for _, g := range s.GroupBy {
			expr, err := b.expr(g)
			if err != nil {
				return err
			}
			parts = append(parts, expr)
		}
		b.sql.WriteString(" GROUP BY " + strings.Join(parts, ", "))
	}

	parts := make([]string, 0, len(s.OrderBy))
	for _, o := range s.OrderBy {
		expr, err := b.expr(o.Expr)
		if err != nil {
			return err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, expr+" "+dir)
	}
	b.sql.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	return nil
}

func table(t queryir.Table) string {
	if t.Alias == "" {
		return t.Name
	}
	return t.Name + " " + t.Alias
}

func (b *builder) expr(e queryir.Expr) (string, error) {
	switch expr := e.(type) {
	case queryir.ColumnRef:
		return expr.Name, nil
	case queryir.Coalesce:
		args := make([]string, 0, len(expr.Args))
		for _, a := range expr.Args {
			s, err := b.expr(a)
			if err != nil {
				return "", err
			}
			args = append(args, s)
		}
		return "COALESCE(" + strings.Join(args, ", ") + ")", nil
	case queryir.Count:
		if expr.Arg == nil {
			return "COUNT(*)", nil
		}
		arg, err := b.expr(expr.Arg)
		if err != nil {
			return "", err
		}
		return "COUNT(" + arg + ")", nil
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

// predicate compiles p to a WHERE fragment. Compound predicates with more
// than one child are parenthesized so fragments compose under AND.
func (b *builder) predicate(p queryir.Predicate) (string, error) {
	switch pred := p.(type) {
	case queryir.Compare:
		return fmt.Sprintf("%s %s %s", pred.Field, pred.Op, b.bind(pred.Value)), nil
	case queryir.ColumnCompare:
		return fmt.Sprintf("%s %s %s", pred.Left, pred.Op, pred.Right), nil
	case queryir.IsNull:
		if pred.Not {
			return pred.Field + " IS NOT NULL", nil
		}
		return pred.Field + " IS NULL", nil
	case queryir.In:
		marks := make([]string, len(pred.Values))
		for i, v := range pred.Values {
			marks[i] = b.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", pred.Field, strings.Join(marks, ", ")), nil
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil
		}
		return b.junction(pred.Predicates, " AND ")
	case queryir.Or:
		return b.junction(pred.Predicates, " OR ")
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (b *builder) junction(preds []queryir.Predicate, sep string) (string, error) {
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		s, err := b.predicate(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}
