package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidQuery(t *testing.T) {
	q := Select{
		Columns: []Column{
			{Expr: Col("a.audit_id")},
			{Expr: Coalesce{Args: []Expr{Col("p.name"), Col("a.new_name")}}, As: "entity_name"},
			{Expr: Col("u.username")},
		},
		From: T("Audit_Products", "a"),
		Joins: []Join{
			{Kind: LeftJoin, Table: T("Products", "p"), On: ColumnCompare{Left: "p.product_id", Op: OpEq, Right: "a.product_id"}},
			{Kind: LeftJoin, Table: T("Users", "u"), On: ColumnCompare{Left: "u.user_id", Op: OpEq, Right: "a.changed_by"}},
		},
		Where: []Predicate{
			Equals("a.operation_type", "UPDATE"),
			Or{Predicates: []Predicate{
				ColumnCompare{Left: "a.old_price", Op: OpNe, Right: "a.new_price"},
				IsNull{Field: "a.old_price"},
			}},
		},
		OrderBy: []Order{Desc("a.changed_at"), Desc("a.audit_id")},
	}

	result := Validate(q)
	assert.True(t, result.OK(), "problems: %v", result.Problems)
	assert.NoError(t, result.Err())

	result = Validate(&q)
	assert.True(t, result.OK())
}

func TestValidate_MissingOrderBy(t *testing.T) {
	q := baseSelect()
	q.OrderBy = nil

	result := Validate(q)
	require.False(t, result.OK())
	assert.Contains(t, result.Problems, "missing ORDER BY")
	assert.ErrorIs(t, result.Err(), ErrInvalidQuery)
}

func TestValidate_NoColumns(t *testing.T) {
	q := baseSelect()
	q.Columns = nil

	result := Validate(q)
	assert.Contains(t, result.Problems, "no columns selected")
}

func TestValidate_NilQuery(t *testing.T) {
	assert.Equal(t, []string{"nil query"}, Validate(nil).Problems)

	var q *Select
	assert.Equal(t, []string{"nil query"}, Validate(q).Problems)
}

func TestValidate_RejectsUnsafeIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Select)
	}{
		{"table name", func(s *Select) { s.From.Name = "Orders; DROP TABLE Users" }},
		{"table alias", func(s *Select) { s.From.Alias = "a b" }},
		{"qualified table", func(s *Select) { s.From.Name = "main.Orders" }},
		{"column ref", func(s *Select) { s.Columns[0].Expr = Col("a.audit_id--") }},
		{"column alias", func(s *Select) { s.Columns[0].As = "x y" }},
		{"predicate field", func(s *Select) { s.Where = []Predicate{Equals("1=1 OR a.x", 1)} }},
		{"order key", func(s *Select) { s.OrderBy = []Order{Asc("a.b.c")} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := baseSelect()
			tt.mutate(&q)
			assert.False(t, Validate(q).OK())
		})
	}
}

func TestValidate_CompareWithNilValue(t *testing.T) {
	q := baseSelect().With(Equals("a.reason", nil))

	result := Validate(q)
	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "use IsNull")
}

func TestValidate_UnknownOperator(t *testing.T) {
	q := baseSelect().With(Compare{Field: "a.x", Op: "LIKE", Value: "%"})
	assert.Contains(t, Validate(q).Problems, `unknown operator "LIKE"`)

	q = baseSelect().With(ColumnCompare{Left: "a.x", Op: "~", Right: "a.y"})
	assert.False(t, Validate(q).OK())
}

func TestValidate_EmptyInAndOr(t *testing.T) {
	q := baseSelect().With(In{Field: "a.table_name"}, Or{})

	result := Validate(q)
	assert.Len(t, result.Problems, 2)
}

func TestValidate_EmptyAndIsAllowed(t *testing.T) {
	q := baseSelect().With(And{})
	assert.True(t, Validate(q).OK())
}

func TestValidate_JoinWithoutOn(t *testing.T) {
	q := baseSelect()
	q.Joins = []Join{{Kind: InnerJoin, Table: T("Orders", "o")}}

	result := Validate(q)
	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "no ON condition")
}

func TestValidate_NestedPredicatesAreChecked(t *testing.T) {
	q := baseSelect().With(And{Predicates: []Predicate{
		Or{Predicates: []Predicate{IsNull{Field: "bad field"}}},
	}})
	assert.False(t, Validate(q).OK())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	q := Select{From: Table{Name: ""}}

	result := Validate(q)
	assert.GreaterOrEqual(t, len(result.Problems), 3)
	assert.Contains(t, result.Err().Error(), "missing ORDER BY")
}

func TestValidate_CountStar(t *testing.T) {
	q := Select{
		Columns: []Column{{Expr: Col("l.table_name")}, {Expr: Count{}, As: "n"}},
		From:    T("Audit_Log", "l"),
		GroupBy: []Expr{Col("l.table_name")},
		OrderBy: []Order{Asc("l.table_name")},
	}
	assert.True(t, Validate(q).OK())
}
