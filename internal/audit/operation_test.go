package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("update")
	require.NoError(t, err)
	assert.Equal(t, OpUpdate, op)

	_, err = ParseOperation("UPSERT")
	assert.Error(t, err)
}

func TestOperationScan(t *testing.T) {
	var op Operation
	require.NoError(t, op.Scan([]byte("DELETE")))
	assert.Equal(t, OpDelete, op)

	assert.Error(t, op.Scan("MERGE"))
	assert.Error(t, op.Scan(int64(1)))
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"product":   KindProduct,
		"Products":  KindProduct,
		"ORDER":     KindOrder,
		"customers": KindCustomer,
		" payment ": KindPayment,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseKind(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseKind("invoice")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindTableNames(t *testing.T) {
	assert.Equal(t, "Product", KindProduct.Label())
	assert.Equal(t, "Orders", KindOrder.EntityTable())
	assert.Equal(t, "Audit_Customers", KindCustomer.AuditTable())
	assert.Equal(t, "payment_id", KindPayment.IDColumn())
}

func TestKindHasReason(t *testing.T) {
	assert.True(t, KindProduct.HasReason())
	assert.True(t, KindOrder.HasReason())
	assert.False(t, KindCustomer.HasReason())
	assert.False(t, KindPayment.HasReason())
}
