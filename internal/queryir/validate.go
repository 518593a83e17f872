package queryir

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// identPattern accepts a bare or single-qualified SQL identifier.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ErrInvalidQuery wraps every structural problem Validate reports.
var ErrInvalidQuery = errors.New("invalid query")

// ValidationResult lists the structural problems found in a query.
type ValidationResult struct {
	Problems []string
}

// OK reports whether the query is compilable.
func (r ValidationResult) OK() bool {
	return len(r.Problems) == 0
}

// Err returns nil for a valid query, otherwise an error wrapping
// ErrInvalidQuery that lists every problem.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(r.Problems, "; "))
}

// Validate checks a query against the IR rules.
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(q)
	return ValidationResult{Problems: v.problems}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(s Select) {
	v.validateTable("FROM", s.From)
	if len(s.Columns) == 0 {
		v.addProblem("no columns selected")
	}
	for _, c := range s.Columns {
		v.validateExpr(c.Expr)
		if c.As != "" && !isPlainIdent(c.As) {
			v.addProblem("invalid column alias %q", c.As)
		}
	}
	for _, j := range s.Joins {
		v.validateTable(j.Kind.String(), j.Table)
		if j.Kind != InnerJoin && j.Kind != LeftJoin {
			v.addProblem("unknown join kind %d", int(j.Kind))
		}
		if j.On == nil {
			v.addProblem("join %s has no ON condition", j.Table.Name)
		} else {
			v.validatePredicate(j.On)
		}
	}
	for _, p := range s.Where {
		v.validatePredicate(p)
	}
	for _, g := range s.GroupBy {
		v.validateExpr(g)
	}
	if len(s.OrderBy) == 0 {
		v.addProblem("missing ORDER BY")
	}
	for _, o := range s.OrderBy {
		v.validateExpr(o.Expr)
	}
}

func (v *validator) validateTable(clause string, t Table) {
	if !isPlainIdent(t.Name) {
		v.addProblem("%s: invalid table name %q", clause, t.Name)
	}
	if t.Alias != "" && !isPlainIdent(t.Alias) {
		v.addProblem("%s: invalid table alias %q", clause, t.Alias)
	}
}

func (v *validator) validateExpr(e Expr) {
	switch expr := e.(type) {
	case nil:
		v.addProblem("nil expression")
	case ColumnRef:
		v.validateIdent(expr.Name)
	case Coalesce:
		if len(expr.Args) == 0 {
			v.addProblem("COALESCE without arguments")
		}
		for _, a := range expr.Args {
			v.validateExpr(a)
		}
	case Count:
		if expr.Arg != nil {
			v.validateExpr(expr.Arg)
		}
	default:
		v.addProblem("unknown expression type %T", e)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate")
	case Compare:
		v.validateIdent(pred.Field)
		v.validateOp(pred.Op)
		if pred.Value == nil {
			v.addProblem("field %q compared to NULL; use IsNull", pred.Field)
		}
	case ColumnCompare:
		v.validateIdent(pred.Left)
		v.validateIdent(pred.Right)
		v.validateOp(pred.Op)
	case IsNull:
		v.validateIdent(pred.Field)
	case In:
		v.validateIdent(pred.Field)
		if len(pred.Values) == 0 {
			v.addProblem("IN on %q with no values", pred.Field)
		}
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		if len(pred.Predicates) == 0 {
			v.addProblem("empty OR")
		}
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) validateIdent(name string) {
	if !identPattern.MatchString(name) {
		v.addProblem("invalid identifier %q", name)
	}
}

func (v *validator) validateOp(op CompareOp) {
	if !op.Valid() {
		v.addProblem("unknown operator %q", string(op))
	}
}

func isPlainIdent(name string) bool {
	return identPattern.MatchString(name) && !strings.Contains(name, ".")
}
