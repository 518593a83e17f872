// Package service binds the provenance, lineage and trace engines to one
// store and applies the per-operation deadline and row cap shared by the
// CLI and HTTP front ends.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/lineage"
	"github.com/roach88/auditlens/internal/provenance"
	"github.com/roach88/auditlens/internal/querysql"
	"github.com/roach88/auditlens/internal/store"
	"github.com/roach88/auditlens/internal/trace"
)

// Backend is what the service reads from. *store.Store satisfies it.
type Backend interface {
	store.Querier
	Ping(ctx context.Context) error
	Dialect() querysql.Dialect
}

// Options tunes a Service. Zero values disable the deadline and the cap.
type Options struct {
	Timeout    time.Duration
	MaxRecords int
	Logger     zerolog.Logger
}

// Service runs read-only audit operations.
type Service struct {
	backend    Backend
	provenance *provenance.Engine
	lineage    *lineage.Engine
	trace      *trace.Engine
	timeout    time.Duration
	maxRecords int
}

// New wires the three engines to b.
func New(b Backend, opts Options) *Service {
	d := b.Dialect()
	return &Service{
		backend:    b,
		provenance: provenance.New(b, d, provenance.WithLogger(opts.Logger)),
		lineage:    lineage.New(b, d, lineage.WithLogger(opts.Logger)),
		trace:      trace.New(b, d, trace.WithLogger(opts.Logger)),
		timeout:    opts.Timeout,
		maxRecords: opts.MaxRecords,
	}
}

// Page is a capped result list. Total counts rows before the cap.
type Page[T any] struct {
	Rows      []T  `json:"rows"`
	Total     int  `json:"total"`
	Truncated bool `json:"truncated"`
}

func capRows[T any](rows []T, max int) Page[T] {
	p := Page[T]{Rows: rows, Total: len(rows)}
	if p.Rows == nil {
		p.Rows = []T{}
	}
	if max > 0 && len(rows) > max {
		p.Rows = rows[:max]
		p.Truncated = true
	}
	return p
}

func (s *Service) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Ping checks that the backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.backend.Ping(ctx)
}

// Why returns price changes with their reasons, newest first.
func (s *Service) Why(ctx context.Context, r audit.DateRange) (Page[provenance.WhyRow], error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	rows, err := s.provenance.WhyView(ctx, r)
	if err != nil {
		return Page[provenance.WhyRow]{}, err
	}
	return capRows(rows, s.maxRecords), nil
}

// How returns order status transitions with dwell times.
func (s *Service) How(ctx context.Context, r audit.DateRange) (Page[provenance.HowRow], error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	rows, err := s.provenance.HowView(ctx, r)
	if err != nil {
		return Page[provenance.HowRow]{}, err
	}
	return capRows(rows, s.maxRecords), nil
}

// Where returns field-level changes with the acting user, newest first.
func (s *Service) Where(ctx context.Context, r audit.DateRange) (Page[provenance.WhereRow], error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	rows, err := s.provenance.WhereView(ctx, r)
	if err != nil {
		return Page[provenance.WhereRow]{}, err
	}
	return capRows(rows, s.maxRecords), nil
}

// History returns the audit records of one kind, newest first.
func (s *Service) History(ctx context.Context, kind audit.Kind, r audit.DateRange) (Page[provenance.HistoryRow], error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	rows, err := s.provenance.History(ctx, kind, r)
	if err != nil {
		return Page[provenance.HistoryRow]{}, err
	}
	return capRows(rows, s.maxRecords), nil
}

// Summary is the analytics pair: change counts and per-user activity.
type Summary struct {
	Changes []provenance.ChangeCount  `json:"changes"`
	Users   []provenance.UserActivity `json:"users"`
}

// Summary computes change counts and user activity over r.
func (s *Service) Summary(ctx context.Context, r audit.DateRange) (Summary, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	changes, err := s.provenance.ChangeSummary(ctx, r)
	if err != nil {
		return Summary{}, err
	}
	users, err := s.provenance.UserActivity(ctx, r)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Changes: changes, Users: users}, nil
}

// Lineage returns a customer's merged journey, oldest first.
func (s *Service) Lineage(ctx context.Context, customerID int64) (Page[lineage.Event], error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	events, err := s.lineage.Journey(ctx, customerID)
	if err != nil {
		return Page[lineage.Event]{}, err
	}
	return capRows(events, s.maxRecords), nil
}

// TraceResult is one entity's history with its rendered narrative.
type TraceResult struct {
	Kind      audit.Kind    `json:"kind"`
	EntityID  int64         `json:"entity_id"`
	Entries   []trace.Entry `json:"entries"`
	Narrative []string      `json:"narrative,omitempty"`
}

// Trace returns the full history of one entity. The narrative is rendered
// only when asked for; traces are never capped.
func (s *Service) Trace(ctx context.Context, kind audit.Kind, entityID int64, narrative bool) (TraceResult, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	entries, err := s.trace.Trace(ctx, kind, entityID)
	if err != nil {
		return TraceResult{}, err
	}
	k, _ := audit.ParseKind(string(kind))
	res := TraceResult{Kind: k, EntityID: entityID, Entries: entries}
	if narrative {
		res.Narrative = trace.Narrate(k, entries)
	}
	return res, nil
}
