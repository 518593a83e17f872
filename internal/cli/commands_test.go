package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlens/internal/testutil"
)

func TestTextOutput_Golden(t *testing.T) {
	db := shopDB(t)

	tests := []struct {
		golden string
		args   []string
	}{
		{"why", []string{"why"}},
		{"how", []string{"how"}},
		{"summary", []string{"summary"}},
		{"lineage_customer_1", []string{"lineage", "--customer", "1"}},
		{"trace_order_101_narrative", []string{"trace", "order", "101", "--narrative"}},
	}
	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			out, _, err := execute(t, append(tt.args, "--db", db)...)
			require.NoError(t, err)
			testutil.AssertGolden(t, tt.golden, []byte(out))
		})
	}
}

func TestWhy_JSONEnvelope(t *testing.T) {
	out, _, err := execute(t, "why", "--db", shopDB(t), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Rows []struct {
				ProductID   int64  `json:"product_id"`
				EntityName  string `json:"entity_name"`
				OldPrice    string `json:"old_price"`
				NewPrice    string `json:"new_price"`
				PriceChange string `json:"price_change"`
				ChangedAt   string `json:"changed_at"`
				ChangedBy   string `json:"changed_by"`
				Reason      string `json:"reason"`
			} `json:"rows"`
			Total     int  `json:"total"`
			Truncated bool `json:"truncated"`
		} `json:"data"`
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, fixedTraceID, resp.TraceID)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Rows, 1)

	row := resp.Data.Rows[0]
	assert.Equal(t, int64(1), row.ProductID)
	assert.Equal(t, "Mechanical Keyboard", row.EntityName)
	assert.Equal(t, "119.99", row.OldPrice)
	assert.Equal(t, "129.99", row.NewPrice)
	assert.Equal(t, "10.00", row.PriceChange)
	assert.Equal(t, "2024-01-05T14:30:00Z", row.ChangedAt)
	assert.Equal(t, "bob", row.ChangedBy)
	assert.Equal(t, "supplier cost increase", row.Reason)
}

func TestWhere_DayRange(t *testing.T) {
	out, _, err := execute(t, "where", "--db", shopDB(t), "--from", "2024-01-06", "--to", "2024-01-06", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Rows []struct {
				TableName string `json:"table_name"`
				FieldName string `json:"field_name"`
			} `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Rows, 2)
	assert.Equal(t, "Products", resp.Data.Rows[0].TableName)
	assert.Equal(t, "stock_quantity", resp.Data.Rows[0].FieldName)
	assert.Equal(t, "Orders", resp.Data.Rows[1].TableName)
}

func TestRange_InvalidRunsNothing(t *testing.T) {
	tests := [][]string{
		{"why", "--from", "2024-02-30"},
		{"how", "--from", "2024-02-01", "--to", "2024-01-01"},
		{"summary", "--to", "tomorrow"},
		{"history", "orders", "--from", "1/2/2024"},
	}
	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			// the database path does not exist; a run that got past
			// validation would fail with E200 instead
			missing := filepath.Join(t.TempDir(), "no", "such.db")
			out, _, err := execute(t, append(args, "--db", missing, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, "E100", resp.Error.Code)
			assert.Equal(t, fixedTraceID, resp.TraceID)
		})
	}
}

func TestHistory(t *testing.T) {
	db := shopDB(t)

	out, _, err := execute(t, "history", "products", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Price: $119.99 → $129.99")
	assert.Contains(t, out, "Stock: 50 → 40")

	_, _, err = execute(t, "history", "invoices", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "history", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestHistory_EmptyStore(t *testing.T) {
	out, _, err := execute(t, "history", "payment", "--db", emptyDB(t))
	require.NoError(t, err)
	assert.Equal(t, "No audit records found.\n", out)
}

func TestLineage(t *testing.T) {
	db := shopDB(t)

	out, _, err := execute(t, "lineage", "--customer", "2", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "Order #102")

	out, _, err = execute(t, "lineage", "--customer", "42", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No journey found for customer 42.\n", out)

	_, _, err = execute(t, "lineage", "--customer", "-1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "lineage", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTrace(t *testing.T) {
	db := shopDB(t)

	out, _, err := execute(t, "trace", "payment", "201", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Payment #201")
	assert.Contains(t, out, "system")
	assert.Contains(t, out, "Status: pending → completed")

	out, _, err = execute(t, "trace", "product", "77", "--db", db, "--narrative")
	require.NoError(t, err)
	assert.Equal(t, "Product #77\n\nNo history.\n", out)
}

func TestTrace_BadArguments(t *testing.T) {
	db := shopDB(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"trace", "widget", "1"}},
		{"non-numeric id", []string{"trace", "order", "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append(tt.args, "--db", db, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "E100", resp.Error.Code)
		})
	}

	_, _, err := execute(t, "trace", "order", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}

func TestTrace_JSON(t *testing.T) {
	out, _, err := execute(t, "trace", "customer", "1", "--db", shopDB(t), "--format", "json", "--narrative")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Kind    string `json:"kind"`
			Entries []struct {
				Record    map[string]any `json:"record"`
				ChangedBy string         `json:"changed_by"`
			} `json:"entries"`
			Narrative []string `json:"narrative"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "customer", resp.Data.Kind)
	require.Len(t, resp.Data.Entries, 2)
	assert.Equal(t, "Ada King", resp.Data.Entries[1].Record["new_name"])
	assert.Equal(t, "bob", resp.Data.Entries[1].ChangedBy)
	assert.Len(t, resp.Data.Narrative, 2)
}
