package trace

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

// ErrUnknownKind is returned for an entity kind that has no audit table.
var ErrUnknownKind = audit.ErrUnknownKind

// Entry is one audit record of the traced entity. ChangedBy is the acting
// username, "user #N" when the user row is gone, or empty for system writes.
type Entry struct {
	Record    audit.Record `json:"record"`
	ChangedBy string       `json:"changed_by"`
}

// Engine traces single entities over a Querier.
type Engine struct {
	q        store.Querier
	compiler *querysql.Compiler
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-trace debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l.With().Str("component", "trace").Logger()
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

// Trace returns every audit record of the entity, ordered by
// (changed_at, audit_id) ascending. An entity with no history yields an
// empty slice.
func (e *Engine) Trace(ctx context.Context, kind audit.Kind, entityID int64) ([]Entry, error) {
	k, err := audit.ParseKind(string(kind))
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	cols := append(store.RecordColumns(k, "a"), queryir.Column{Expr: queryir.Col("u.username")})
	sel := queryir.Select{
		Columns: cols,
		From:    queryir.T(k.AuditTable(), "a"),
		Joins: []queryir.Join{{
			Kind:  queryir.LeftJoin,
			Table: queryir.T("Users", "u"),
			On:    queryir.ColumnCompare{Left: "a.changed_by", Op: queryir.OpEq, Right: "u.user_id"},
		}},
		Where:   []queryir.Predicate{queryir.Equals("a."+k.IDColumn(), entityID)},
		OrderBy: []queryir.Order{queryir.Asc("a.changed_at"), queryir.Asc("a.audit_id")},
	}

	start := time.Now()
	out := []Entry{}
	err = store.Select(ctx, e.q, e.compiler, sel, func(rows *sql.Rows) error {
		var username audit.NullString
		rec, err := store.ScanRecord(k, rows, &username)
		if err != nil {
			return err
		}
		out = append(out, Entry{Record: rec, ChangedBy: actorName(rec.Meta().ChangedBy, username)})
		return nil
	})
	e.log.Debug().
		Str("kind", string(k)).
		Int64("entity_id", entityID).
		Int("entries", len(out)).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("trace loaded")
	if err != nil {
		return nil, fmt.Errorf("trace %s %d: %w", k, entityID, err)
	}
	return out, nil
}

func actorName(id audit.NullInt64, username audit.NullString) string {
	switch {
	case username.Valid:
		return username.String
	case id.Valid:
		return fmt.Sprintf("user #%d", id.Int64)
	}
	return ""
}
