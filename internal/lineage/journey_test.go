package lineage

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/store"
	"github.com/roach88/auditlens/internal/testutil"
)

func newEngine(t *testing.T, s *store.Store) *Engine {
	t.Helper()
	return New(s, s.Dialect())
}

func render(events []Event) []byte {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%s | %-8s | %-12s | %-6s | %s\n",
			e.ChangedAt.Format("2006-01-02 15:04:05"), e.EntityType, e.EntityName, e.Operation, e.ChangeDetails)
	}
	return []byte(b.String())
}

func TestJourney_Shop(t *testing.T) {
	s := testutil.ShopStore(t)

	got, err := newEngine(t, s).Journey(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 7)

	testutil.AssertGolden(t, "journey_customer_1", render(got))
}

func TestJourney_ThreeRecordScenario(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCustomer(ctx, store.Customer{ID: 1, Name: "Cara"}))
	require.NoError(t, s.PutOrder(ctx, store.Order{ID: 5, CustomerID: 1, Status: "PAID", TotalAmount: audit.MustMoney("10.00")}))
	require.NoError(t, s.PutPayment(ctx, store.Payment{ID: 9, OrderID: 5, Amount: audit.MustMoney("10.00"), PaymentStatus: "settled"}))

	t0 := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(90 * time.Minute)

	// the payment is appended first so only the rank can put the order ahead
	testutil.Append(t, s,
		audit.PaymentAudit{
			Header:           audit.Header{Operation: audit.OpInsert, ChangedAt: t1},
			PaymentID:        9,
			NewAmount:        audit.MoneyOf(audit.MustMoney("10.00")),
			NewPaymentStatus: audit.StringOf("settled"),
		},
		testutil.StatusChange(5, "NEW", "PAID", t1),
		audit.CustomerAudit{
			Header:     audit.Header{Operation: audit.OpInsert, ChangedAt: t0},
			CustomerID: 1,
			NewName:    audit.StringOf("Cara"),
		},
	)

	got, err := newEngine(t, s).Journey(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Event{
		EntityType: EntityCustomer, EntityID: 1, EntityName: "Cara",
		Operation: audit.OpInsert, ChangedAt: t0, ChangeDetails: "Name: N/A → Cara",
	}, got[0])
	assert.Equal(t, Event{
		EntityType: EntityOrder, EntityID: 5, EntityName: "Order #5",
		Operation: audit.OpUpdate, ChangedAt: t1, ChangeDetails: "Status: NEW → PAID",
	}, got[1])
	assert.Equal(t, Event{
		EntityType: EntityPayment, EntityID: 9, EntityName: "Payment #9",
		Operation: audit.OpInsert, ChangedAt: t1, ChangeDetails: "Status: N/A → settled",
	}, got[2])
}

func TestJourney_OnlyLinkedRecords(t *testing.T) {
	s := testutil.ShopStore(t)

	got, err := newEngine(t, s).Journey(context.Background(), 2)
	require.NoError(t, err)

	// Grace: her INSERT and order 102; nothing from customer 1's order or payment
	require.Len(t, got, 2)
	assert.Equal(t, EntityCustomer, got[0].EntityType)
	assert.Equal(t, "Grace Hopper", got[0].EntityName)
	assert.Equal(t, "Order #102", got[1].EntityName)
}

func TestJourney_UnknownCustomer(t *testing.T) {
	s := testutil.ShopStore(t)

	got, err := newEngine(t, s).Journey(context.Background(), 999)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJourney_DeletedCustomerKeepsHistory(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	testutil.Append(t, s,
		testutil.CustomerRenamed(3, "", "Old Name", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		audit.CustomerAudit{
			Header:     audit.Header{Operation: audit.OpDelete, ChangedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			CustomerID: 3,
			OldName:    audit.StringOf("Old Name"),
		},
	)

	got, err := newEngine(t, s).Journey(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Old Name", got[0].EntityName)
	assert.Equal(t, "Name: Old Name → N/A", got[1].ChangeDetails)
	assert.Equal(t, "Old Name", got[1].EntityName)
}

func TestJourney_InvalidCustomer(t *testing.T) {
	s := testutil.OpenStore(t)

	got, err := newEngine(t, s).Journey(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidCustomer)
	assert.Nil(t, got)
}

func TestJourney_StoreUnavailable(t *testing.T) {
	s := testutil.OpenStore(t)
	e := newEngine(t, s)
	require.NoError(t, s.Close())

	got, err := e.Journey(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, store.IsUnavailable(err))
}

func TestJourney_CanceledContext(t *testing.T) {
	s := testutil.ShopStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := newEngine(t, s).Journey(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, store.IsUnavailable(err))
}

func TestJourney_Idempotent(t *testing.T) {
	s := testutil.ShopStore(t)
	e := newEngine(t, s)

	first, err := e.Journey(context.Background(), 1)
	require.NoError(t, err)
	second, err := e.Journey(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
