package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactions_AddAndList(t *testing.T) {
	dir := initLedger(t)

	out, err := run(t, "transactions", "add", "--repo", dir,
		"--date", "2026-02-05", "--merchant", "Farmers Market", "--amount", "-18.25", "--category", "Groceries")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added manual-0001")

	out, err = run(t, "transactions", "add", "--repo", dir, "--account", "savings",
		"--date", "2026-02-06", "--merchant", "Interest", "--amount", "3.10")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added manual-0002")

	txns, err := readLedger(t, dir).All()
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Empty(t, txns[0].Hash)
	assert.Equal(t, "checking", txns[0].AccountID)
	assert.Equal(t, "Groceries", txns[0].Category)
	assert.Equal(t, "savings", txns[1].AccountID)
	assert.Equal(t, "Other", txns[1].Category)

	out, err = run(t, "transactions", "--repo", dir, "--account", "savings")
	require.NoError(t, err)
	assert.Contains(t, out, "Interest")
	assert.Contains(t, out, "(manual)")
	assert.NotContains(t, out, "Farmers Market")

	out, err = run(t, "accounts", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "-18.25")
	assert.Contains(t, out, "3.10")
}

func TestTransactions_AddRejectsBadInput(t *testing.T) {
	dir := initLedger(t)

	_, err := run(t, "transactions", "add", "--repo", dir, "--merchant", "X", "--amount", "lots")
	assert.Error(t, err)

	_, err = run(t, "transactions", "add", "--repo", dir, "--merchant", "X", "--amount", "1", "--date", "02/05/2026")
	assert.Error(t, err)

	_, err = run(t, "transactions", "add", "--repo", dir, "--merchant", "X", "--amount", "1", "--account", "brokerage")
	assert.Error(t, err)

	_, err = run(t, "transactions", "add", "--repo", dir, "--amount", "1")
	assert.Error(t, err)
}

func TestTransactions_ManualEntryNeverBlocksImport(t *testing.T) {
	dir := initLedger(t)

	// Same date, merchant and amount as a statement row.
	_, err := run(t, "transactions", "add", "--repo", dir,
		"--date", "2026-02-01", "--merchant", "Coffee Shop", "--amount", "-4.50")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "feb.csv")
	writeStatement(t, path, statement)
	out, err := run(t, "import", path, "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 2, skipped 0 duplicates")

	txns, err := readLedger(t, dir).All()
	require.NoError(t, err)
	assert.Len(t, txns, 3)
}

func TestTransactions_Delete(t *testing.T) {
	dir := initLedger(t)
	path := filepath.Join(t.TempDir(), "feb.csv")
	writeStatement(t, path, statement)
	_, err := run(t, "import", path, "--repo", dir)
	require.NoError(t, err)

	txns, err := readLedger(t, dir).All()
	require.NoError(t, err)
	require.Len(t, txns, 2)

	out, err := run(t, "transactions", "delete", txns[1].ID, "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted")

	accts, err := readLedger(t, dir).List()
	require.NoError(t, err)
	assert.Equal(t, "-4.50", accts[0].Balance.StringFixed(2))

	// The deleted row is no longer a duplicate, so re-import brings it back.
	out, err = run(t, "import", path, "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 1, skipped 1 duplicates")

	_, err = run(t, "transactions", "delete", "nope", "--repo", dir)
	assert.Error(t, err)
}

func TestTransactions_Limit(t *testing.T) {
	dir := initLedger(t)
	for _, m := range []string{"One", "Two", "Three"} {
		_, err := run(t, "transactions", "add", "--repo", dir, "--date", "2026-02-01", "--merchant", m, "--amount", "-1")
		require.NoError(t, err)
	}

	out, err := run(t, "transactions", "--repo", dir, "--limit", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "One")
	assert.Contains(t, out, "Two")
	assert.Contains(t, out, "Three")
}

func TestTransactions_Empty(t *testing.T) {
	dir := initLedger(t)
	out, err := run(t, "transactions", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions.")
}
