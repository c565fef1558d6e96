package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("EUR")
	cfg.Ledger.Backend = BackendSQLite
	cfg.Ledger.Path = "ledger.db"
	cfg.Import.DefaultAccount = "acct-2"
	cfg.Git.AutoCommit = true

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", got.HomeCurrency)
	assert.Equal(t, BackendSQLite, got.Ledger.Backend)
	assert.Equal(t, "ledger.db", got.Ledger.Path)
	assert.Equal(t, "acct-2", got.Import.DefaultAccount)
	assert.True(t, got.Import.MoveProcessed)
	assert.Equal(t, "info", got.Log.Level)
	assert.True(t, got.Git.AutoCommit)
	assert.Equal(t, cfg.Git.AuthorName, got.Git.AuthorName)
	assert.Equal(t, cfg.Git.AuthorEmail, got.Git.AuthorEmail)
}

func TestDefaults(t *testing.T) {
	cfg := Default("")

	assert.Equal(t, "USD", cfg.HomeCurrency)
	assert.Equal(t, BackendCSV, cfg.Ledger.Backend)
	assert.Equal(t, "ledger", cfg.Ledger.Path)
	assert.True(t, cfg.Import.MoveProcessed)
	assert.Empty(t, cfg.Import.DefaultAccount)
	assert.False(t, cfg.Git.AutoCommit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("home_currency: GBP\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.HomeCurrency)
	assert.Equal(t, BackendCSV, cfg.Ledger.Backend)
	assert.Equal(t, "ledger", cfg.Ledger.Path)
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  backend: postgres\n  path: x\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ledger backend")
}

func TestLedgerPath(t *testing.T) {
	cfg := Default("USD")
	assert.Equal(t, filepath.Join("/data", "ledger"), cfg.LedgerPath("/data"))

	cfg.Ledger.Path = "/var/lib/ledger.db"
	assert.Equal(t, "/var/lib/ledger.db", cfg.LedgerPath("/data"))
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("USD")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "home_currency: USD")
	assert.Contains(t, contents, "backend: csv")
	assert.Contains(t, contents, "move_processed: true")
	assert.Contains(t, contents, "auto_commit: false")
}

func TestDefaultLedgerPath(t *testing.T) {
	assert.Equal(t, "ledger", DefaultLedgerPath(BackendCSV))
	assert.Equal(t, "ledger.db", DefaultLedgerPath(BackendSQLite))
}
