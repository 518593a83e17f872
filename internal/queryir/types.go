package queryir

// Query is a complete, compilable read. Sealed to this package.
type Query interface {
	queryNode()
}

// Predicate is a boolean filter condition. Sealed to this package.
type Predicate interface {
	predicateNode()
}

// Expr is a projected or ordered expression. Sealed to this package.
type Expr interface {
	exprNode()
}

// Table is a source relation with an optional alias.
type Table struct {
	Name  string
	Alias string
}

// T is shorthand for an aliased table.
func T(name, alias string) Table {
	return Table{Name: name, Alias: alias}
}

// Ref returns the qualifier used to reference this table's columns.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinKind selects inner or left outer join semantics.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	}
	return "UNKNOWN JOIN"
}

// Join attaches a table to the Select. LEFT joins keep audit rows whose
// entity or actor row no longer exists.
type Join struct {
	Kind  JoinKind
	Table Table
	On    Predicate
}

// Column is one projected expression with an optional output name.
type Column struct {
	Expr Expr
	As   string
}

// Order is one ORDER BY key.
type Order struct {
	Expr Expr
	Desc bool
}

// Asc and Desc build ordering keys from column references.
func Asc(ref string) Order { return Order{Expr: Col(ref)} }
func Desc(ref string) Order { return Order{Expr: Col(ref), Desc: true} }

// Select is the only Query shape.
//
// Semantics:
//
//	SELECT <Columns> FROM <From> <Joins...>
//	WHERE <Where[0]> AND <Where[1]> ...
//	GROUP BY <GroupBy> ORDER BY <OrderBy>
//
// Where is an ordered list of fragments joined with AND; an empty list means
// no WHERE clause. OrderBy must not be empty.
type Select struct {
	Columns []Column
	From    Table
	Joins   []Join
	Where   []Predicate
	GroupBy []Expr
	OrderBy []Order
}

func (Select) queryNode() {}

// With returns a copy of s with the fragments appended to Where. Nil
// fragments are skipped so optional filters can be passed unconditionally.
func (s Select) With(fragments ...Predicate) Select {
	where := make([]Predicate, 0, len(s.Where)+len(fragments))
	where = append(where, s.Where...)
	for _, f := range fragments {
		if f != nil {
			where = append(where, f)
		}
	}
	s.Where = where
	return s
}

// ColumnRef references a column, optionally qualified ("a.changed_at").
type ColumnRef struct {
	Name string
}

func (ColumnRef) exprNode() {}

// Col builds a ColumnRef.
func Col(name string) ColumnRef { return ColumnRef{Name: name} }

// Coalesce returns the first non-null argument.
type Coalesce struct {
	Args []Expr
}

func (Coalesce) exprNode() {}

// Count counts non-null values of Arg, or rows when Arg is nil.
type Count struct {
	Arg Expr
}

func (Count) exprNode() {}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Valid reports whether op is a known operator.
func (op CompareOp) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Compare tests a column against a bound value: <Field> <Op> ?
type Compare struct {
	Field string
	Op    CompareOp
	Value any
}

func (Compare) predicateNode() {}

// Equals is shorthand for Compare with OpEq.
func Equals(field string, value any) Compare {
	return Compare{Field: field, Op: OpEq, Value: value}
}

// ColumnCompare tests two columns against each other: <Left> <Op> <Right>
type ColumnCompare struct {
	Left  string
	Op    CompareOp
	Right string
}

func (ColumnCompare) predicateNode() {}

// IsNull tests <Field> IS NULL, or IS NOT NULL when Not is set.
type IsNull struct {
	Field string
	Not   bool
}

func (IsNull) predicateNode() {}

// In tests membership in a fixed list of bound values.
type In struct {
	Field  string
	Values []any
}

func (In) predicateNode() {}

// And holds when every child holds. Empty And is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds when any child holds. Empty Or is rejected by Validate.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}
