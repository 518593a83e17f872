// Package queryir provides the query intermediate representation used to
// build every audit read in auditlens.
//
// A view is written once as a base Select plus an ordered list of optional
// predicate fragments (date bounds, entity scope). Fragments are plain
// values, so each one can be constructed and tested without a database, and
// the querysql package turns the finished Select into parameterized SQL for
// the configured dialect.
//
//	[view builder] → [queryir.Select] → [querysql.Compiler] → SQL + params
//
// SEALED INTERFACES:
//
// Query, Predicate and Expr are sealed with marker methods. Only types in
// this package implement them, which keeps the compiler's type switches
// exhaustive:
//
//	switch p := pred.(type) {
//	case Compare:
//	case IsNull:
//	case In:
//	case And, Or:
//	...
//	}
//
// RULES:
//   - Every Select names its columns; there is no SELECT *
//   - Every Select carries an ORDER BY; reads are deterministic
//   - Values are always bound as parameters, never interpolated
//   - Identifiers (tables, aliases, column references) are validated
//     against a strict pattern before compilation
//   - NULL is tested with IsNull, never compared with Compare
package queryir
