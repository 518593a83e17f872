package lineage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/queryir"
	"github.com/roach88/auditlens/internal/querysql"
	"github.com/roach88/auditlens/internal/store"
)

// ErrInvalidCustomer is returned for a customer id that is not positive.
var ErrInvalidCustomer = errors.New("customer id must be positive")

// Engine builds customer journeys over a Querier.
type Engine struct {
	q        store.Querier
	compiler *querysql.Compiler
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-journey debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l.With().Str("component", "lineage").Logger()
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

// Journey returns every audit event of the customer, the customer's orders
// and the payments on those orders, oldest first. A customer with no audit
// history yields an empty slice.
func (e *Engine) Journey(ctx context.Context, customerID int64) ([]Event, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("lineage: %w: %d", ErrInvalidCustomer, customerID)
	}

	start := time.Now()
	var customers, orders, payments []Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = e.customerStream(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = e.orderStream(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = e.paymentStream(gctx, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lineage: %w", err)
	}

	journey := Merge(customers, orders, payments)
	e.log.Debug().
		Int64("customer_id", customerID).
		Int("customer_events", len(customers)).
		Int("order_events", len(orders)).
		Int("payment_events", len(payments)).
		Dur("elapsed", time.Since(start)).
		Msg("journey merged")
	return journey, nil
}

func chronological(alias string) []queryir.Order {
	return []queryir.Order{queryir.Asc(alias + ".changed_at"), queryir.Asc(alias + ".audit_id")}
}

func (e *Engine) customerStream(ctx context.Context, customerID int64) ([]Event, error) {
	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("ac.customer_id")},
			{Expr: queryir.Coalesce{Args: []queryir.Expr{
				queryir.Col("c.name"), queryir.Col("ac.new_name"), queryir.Col("ac.old_name"),
			}}, As: "entity_name"},
			{Expr: queryir.Col("ac.operation_type")},
			{Expr: queryir.Col("ac.changed_at")},
			{Expr: queryir.Col("ac.old_name")},
			{Expr: queryir.Col("ac.new_name")},
		},
		From: queryir.T("Audit_Customers", "ac"),
		Joins: []queryir.Join{{
			Kind:  queryir.LeftJoin,
			Table: queryir.T("Customers", "c"),
			On:    queryir.ColumnCompare{Left: "ac.customer_id", Op: queryir.OpEq, Right: "c.customer_id"},
		}},
		Where:   []queryir.Predicate{queryir.Equals("ac.customer_id", customerID)},
		OrderBy: chronological("ac"),
	}

	out := []Event{}
	err := store.Select(ctx, e.q, e.compiler, sel, func(rows *sql.Rows) error {
		var (
			ev       = Event{EntityType: EntityCustomer}
			name     audit.NullString
			old, new audit.NullString
		)
		if err := rows.Scan(&ev.EntityID, &name, &ev.Operation, &ev.ChangedAt, &old, &new); err != nil {
			return err
		}
		ev.EntityName = name.Or(fmt.Sprintf("Customer #%d", ev.EntityID))
		ev.ChangedAt = ev.ChangedAt.UTC()
		ev.ChangeDetails = details("Name", old, new)
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("customer stream: %w", err)
	}
	return out, nil
}

func (e *Engine) orderStream(ctx context.Context, customerID int64) ([]Event, error) {
	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("ao.order_id")},
			{Expr: queryir.Col("ao.operation_type")},
			{Expr: queryir.Col("ao.changed_at")},
			{Expr: queryir.Col("ao.old_status")},
			{Expr: queryir.Col("ao.new_status")},
		},
		From: queryir.T("Audit_Orders", "ao"),
		Joins: []queryir.Join{{
			Kind:  queryir.InnerJoin,
			Table: queryir.T("Orders", "o"),
			On:    queryir.ColumnCompare{Left: "ao.order_id", Op: queryir.OpEq, Right: "o.order_id"},
		}},
		Where:   []queryir.Predicate{queryir.Equals("o.customer_id", customerID)},
		OrderBy: chronological("ao"),
	}

	out := []Event{}
	err := store.Select(ctx, e.q, e.compiler, sel, func(rows *sql.Rows) error {
		var (
			ev       = Event{EntityType: EntityOrder}
			old, new audit.NullString
		)
		if err := rows.Scan(&ev.EntityID, &ev.Operation, &ev.ChangedAt, &old, &new); err != nil {
			return err
		}
		ev.EntityName = fmt.Sprintf("Order #%d", ev.EntityID)
		ev.ChangedAt = ev.ChangedAt.UTC()
		ev.ChangeDetails = details("Status", old, new)
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("order stream: %w", err)
	}
	return out, nil
}

func (e *Engine) paymentStream(ctx context.Context, customerID int64) ([]Event, error) {
	sel := queryir.Select{
		Columns: []queryir.Column{
			{Expr: queryir.Col("ap.payment_id")},
			{Expr: queryir.Col("ap.operation_type")},
			{Expr: queryir.Col("ap.changed_at")},
			{Expr: queryir.Col("ap.old_payment_status")},
			{Expr: queryir.Col("ap.new_payment_status")},
		},
		From: queryir.T("Audit_Payments", "ap"),
		Joins: []queryir.Join{
			{
				Kind:  queryir.InnerJoin,
				Table: queryir.T("Payments", "py"),
				On:    queryir.ColumnCompare{Left: "ap.payment_id", Op: queryir.OpEq, Right: "py.payment_id"},
			},
			{
				Kind:  queryir.InnerJoin,
				Table: queryir.T("Orders", "o"),
				On:    queryir.ColumnCompare{Left: "py.order_id", Op: queryir.OpEq, Right: "o.order_id"},
			},
		},
		Where:   []queryir.Predicate{queryir.Equals("o.customer_id", customerID)},
		OrderBy: chronological("ap"),
	}

	out := []Event{}
	err := store.Select(ctx, e.q, e.compiler, sel, func(rows *sql.Rows) error {
		var (
			ev       = Event{EntityType: EntityPayment}
			old, new audit.NullString
		)
		if err := rows.Scan(&ev.EntityID, &ev.Operation, &ev.ChangedAt, &old, &new); err != nil {
			return err
		}
		ev.EntityName = fmt.Sprintf("Payment #%d", ev.EntityID)
		ev.ChangedAt = ev.ChangedAt.UTC()
		ev.ChangeDetails = details("Status", old, new)
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("payment stream: %w", err)
	}
	return out, nil
}
