package testutil

import (
	"context"
	_ "embed"
	"path/filepath"
	"testing"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/store"
)

// ShopFixture is a small seeded shop: three users, two customers, two
// products, two orders, one payment and thirteen audit records spanning
// 2024-01-02 to 2024-01-07.
//
//go:embed testdata/shop.yaml
var ShopFixture []byte

// OpenStore opens a migrated SQLite store in a temp directory. The store
// is closed when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "auditlens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Seed loads a YAML fixture into s, failing the test on any error.
func Seed(t testing.TB, s *store.Store, fixture []byte) store.SeedResult {
	t.Helper()
	fx, err := store.LoadFixture(fixture)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	res, err := s.Seed(context.Background(), fx)
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return res
}

// ShopStore opens a store seeded with ShopFixture.
func ShopStore(t testing.TB) *store.Store {
	t.Helper()
	s := OpenStore(t)
	Seed(t, s, ShopFixture)
	return s
}

// Append writes records in order, failing the test on any error, and
// returns the assigned audit ids.
func Append(t testing.TB, s *store.Store, records ...audit.Record) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(records))
	for i, rec := range records {
		id, err := s.AppendAudit(context.Background(), rec)
		if err != nil {
			t.Fatalf("append record %d (%T): %v", i, rec, err)
		}
		ids = append(ids, id)
	}
	return ids
}
