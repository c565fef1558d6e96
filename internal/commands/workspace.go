package commands

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/logging"
)

// workspace is an initialized ledger directory opened for one command.
type workspace struct {
	root   string
	cfg    *config.Config
	store  ledger.Store
	logger *log.Logger
}

// openWorkspace loads the config under repoDir and opens its ledger.
// Callers must Close the workspace.
func openWorkspace(cmd *cobra.Command, repoDir string) (*workspace, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run `pocketledger init` first?)", err)
	}

	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	store, err := ledger.Open(cfg.Ledger.Backend, cfg.LedgerPath(root))
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	logger.Debug("ledger opened", "backend", cfg.Ledger.Backend, "path", cfg.LedgerPath(root))

	return &workspace{root: root, cfg: cfg, store: store, logger: logger}, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}
