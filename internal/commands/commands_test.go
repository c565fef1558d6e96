package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/commands"
)

const statement = "Date,Description,Debit,Credit\n" +
	"2026-02-01,Coffee Shop,4.50,\n" +
	"2026-02-02,Paycheck,,1000.00\n"

// run executes the CLI in-process and returns everything it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initLedger(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, append([]string{"init", dir}, args...)...)
	require.NoError(t, err, out)
	return dir
}

func writeStatement(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}
