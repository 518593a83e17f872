package provenance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/queryir"
	"github.com/roach88/auditlens/internal/querysql"
	"github.com/roach88/auditlens/internal/store"
)

// Engine computes provenance views over a Querier.
type Engine struct {
	q        store.Querier
	compiler *querysql.Compiler
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-view debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l.With().Str("component", "provenance").Logger()
	}
}

// New creates an Engine reading through q with SQL for dialect d.
func New(q store.Querier, d querysql.Dialect, opts ...Option) *Engine {
	e := &Engine{
		q:        q,
		compiler: querysql.NewCompiler(d),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run executes sel and hands every row to scan, logging row count and
// elapsed time under the view's name.
func (e *Engine) run(ctx context.Context, view string, sel queryir.Select, scan func(*sql.Rows) error) error {
	start := time.Now()
	n := 0
	err := store.Select(ctx, e.q, e.compiler, sel, func(rows *sql.Rows) error {
		n++
		return scan(rows)
	})
	e.log.Debug().
		Str("view", view).
		Int("rows", n).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("view computed")
	if err != nil {
		return fmt.Errorf("%s: %w", view, err)
	}
	return nil
}

// rangeFilter returns the changed_at bounds of r as WHERE fragments. Open
// sides produce nothing.
func rangeFilter(column string, r audit.DateRange) []queryir.Predicate {
	var preds []queryir.Predicate
	if r.HasStart() {
		preds = append(preds, queryir.Compare{Field: column, Op: queryir.OpGe, Value: r.Start.UTC()})
	}
	if r.HasEnd() {
		preds = append(preds, queryir.Compare{Field: column, Op: queryir.OpLe, Value: r.End.UTC()})
	}
	return preds
}

// usersJoin attaches the acting user to an audit alias.
func usersJoin(alias string) queryir.Join {
	return queryir.Join{
		Kind:  queryir.LeftJoin,
		Table: queryir.T("Users", "u"),
		On:    queryir.ColumnCompare{Left: alias + ".changed_by", Op: queryir.OpEq, Right: "u.user_id"},
	}
}
