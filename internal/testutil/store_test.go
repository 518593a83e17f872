package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/store"
)

func TestShopFixture_Seeds(t *testing.T) {
	s := OpenStore(t)
	res := Seed(t, s, ShopFixture)
	assert.Equal(t, store.SeedResult{Entities: 10, AuditRecords: 13, LogEntries: 1}, res)
}

func TestAppend_ReturnsIDsInOrder(t *testing.T) {
	s := OpenStore(t)
	clock := NewStepClock(epoch, time.Hour)

	ids := Append(t, s,
		OrderCreated(1, "NEW", clock.Next()),
		StatusChange(1, "NEW", "PAID", clock.Next()),
		By(PriceChange(7, "", "9.99", clock.Next(), "launch"), 1),
	)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
}

func TestBy_SetsActor(t *testing.T) {
	rec := By(CustomerRenamed(1, "A", "B", epoch), 42)
	assert.Equal(t, audit.Int64Of(42), rec.Meta().ChangedBy)

	rec = By(PaymentStatusChange(1, "pending", "paid", epoch), 7)
	assert.Equal(t, audit.Int64Of(7), rec.Meta().ChangedBy)
}

func TestPriceChange_NullOldPrice(t *testing.T) {
	rec := PriceChange(1, "", "5.00", epoch, "")
	assert.False(t, rec.OldPrice.Valid)
	assert.False(t, rec.Reason.Valid)
	assert.False(t, audit.IsNoOp(rec))
}

func TestShopStore_IsQueryable(t *testing.T) {
	s := ShopStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
