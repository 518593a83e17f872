package lineage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)

func ev(typ EntityType, id int64, offset time.Duration) Event {
	return Event{EntityType: typ, EntityID: id, ChangedAt: t0.Add(offset)}
}

func TestMerge_OrdersByTimeThenRank(t *testing.T) {
	customers := []Event{ev(EntityCustomer, 1, 0), ev(EntityCustomer, 1, 3*time.Hour)}
	orders := []Event{ev(EntityOrder, 10, time.Hour), ev(EntityOrder, 10, 3*time.Hour)}
	payments := []Event{ev(EntityPayment, 20, time.Hour), ev(EntityPayment, 20, 2*time.Hour)}

	got := Merge(customers, orders, payments)
	require.Len(t, got, 6)

	want := []Event{
		customers[0],
		orders[0], payments[0], // same instant: Order before Payment
		payments[1],
		customers[1], orders[1], // same instant: Customer before Order
	}
	assert.Equal(t, want, got)
}

func TestMerge_KeepsStreamOrderOnFullTies(t *testing.T) {
	orders := []Event{
		ev(EntityOrder, 10, 0),
		ev(EntityOrder, 11, 0),
		ev(EntityOrder, 12, 0),
	}
	got := Merge(nil, orders, nil)
	assert.Equal(t, orders, got)
}

func TestMerge_Degenerate(t *testing.T) {
	t.Run("no streams", func(t *testing.T) {
		got := Merge()
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("all empty", func(t *testing.T) {
		got := Merge([]Event{}, nil, []Event{})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("customer only", func(t *testing.T) {
		customers := []Event{ev(EntityCustomer, 1, 0), ev(EntityCustomer, 1, time.Minute)}
		assert.Equal(t, customers, Merge(customers, nil, nil))
	})
}

func TestMerge_PreservesLengthAndRelativeOrder(t *testing.T) {
	// deterministic pseudo-random offsets, each stream sorted
	var streams [3][]Event
	seed := uint32(7)
	for s := range streams {
		var at time.Duration
		for i := 0; i < 25; i++ {
			seed = seed*1103515245 + 12345
			at += time.Duration(seed%4) * time.Minute
			streams[s] = append(streams[s], ev(EntityType(s+1), int64(s*100+i), at))
		}
	}

	got := Merge(streams[0], streams[1], streams[2])
	require.Len(t, got, 75)

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].before(got[i-1]), "event %d out of order", i)
	}

	// each stream's events appear in their original relative order
	next := map[EntityType]int{}
	for _, e := range got {
		stream := streams[e.EntityType-1]
		idx := next[e.EntityType]
		require.Less(t, idx, len(stream))
		assert.Equal(t, stream[idx], e)
		next[e.EntityType]++
	}
}

func TestEntityType_String(t *testing.T) {
	assert.Equal(t, "Customer", EntityCustomer.String())
	assert.Equal(t, "Order", EntityOrder.String())
	assert.Equal(t, "Payment", EntityPayment.String())
	assert.Equal(t, "Unknown", EntityType(0).String())
}
