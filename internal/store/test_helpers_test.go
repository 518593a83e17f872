package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/auditlens/internal/audit"
)

// createTestStore creates a new temp-dir SQLite store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var baseTime = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

// at returns baseTime shifted by d.
func at(d time.Duration) time.Time {
	return baseTime.Add(d)
}

// productUpdate creates a price/stock UPDATE for product id.
func productUpdate(id int64, oldPrice, newPrice string, when time.Time) audit.ProductAudit {
	return audit.ProductAudit{
		Header:    audit.Header{Operation: audit.OpUpdate, ChangedAt: when, ChangedBy: audit.Int64Of(1)},
		ProductID: id,
		OldPrice:  audit.MoneyOf(audit.MustMoney(oldPrice)),
		NewPrice:  audit.MoneyOf(audit.MustMoney(newPrice)),
	}
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
