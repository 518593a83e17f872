package provenance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/roach88/auditlens/internal/querysql"
	"github.com/roach88/auditlens/internal/store"
	"github.com/roach88/auditlens/internal/testutil"
)

var day1 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// newEngine opens an empty store and an Engine over it.
func newEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	s := testutil.OpenStore(t)
	return New(s, s.Dialect()), s
}

// shopEngine opens a store seeded with the shop fixture.
func shopEngine(t *testing.T) *Engine {
	t.Helper()
	s := testutil.ShopStore(t)
	return New(s, s.Dialect())
}

// failingQuerier fails the test if any query reaches it.
type failingQuerier struct {
	t *testing.T
}

func (f failingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	f.t.Fatalf("unexpected query: %s", query)
	return nil, nil
}

var _ store.Querier = failingQuerier{}

func unqueryable(t *testing.T) *Engine {
	return New(failingQuerier{t: t}, querysql.SQLite)
}
