package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlens/internal/testutil"
)

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "shop.yaml")
	writeFile(t, fixture, string(testutil.ShopFixture))
	db := filepath.Join(dir, "seeded.db")

	out, _, err := execute(t, "seed", "--db", db, "--fixture", fixture, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Entities     int `json:"entities"`
			AuditRecords int `json:"audit_records"`
			LogEntries   int `json:"log_entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 10, resp.Data.Entities)
	assert.Equal(t, 13, resp.Data.AuditRecords)
	assert.Equal(t, 1, resp.Data.LogEntries)

	out, _, err = execute(t, "why", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "supplier cost increase")
}

func TestSeed_TextOutput(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "shop.yaml")
	writeFile(t, fixture, string(testutil.ShopFixture))

	out, _, err := execute(t, "seed", "--db", filepath.Join(dir, "s.db"), "--fixture", fixture)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 10 entities, 13 audit records, 1 log entries from "+fixture+"\n", out)
}

func TestSeed_InvalidFixture(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "bad.yaml")
	writeFile(t, fixture, "audit:\n  - kind: invoice\n    id: 1\n")

	out, _, err := execute(t, "seed", "--db", filepath.Join(dir, "s.db"), "--fixture", fixture)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E100]")
}

func TestSeed_MissingFixtureFlag(t *testing.T) {
	_, _, err := execute(t, "seed", "--db", emptyDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	addr := serve.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, "", addr.DefValue)
}
