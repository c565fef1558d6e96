package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/accounts"
	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/gitops"
	"github.com/pocketledger/pocketledger/internal/ledger"
)

type initOptions struct {
	homeCurrency string
	backend      string
	git          bool
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.homeCurrency, "home-currency", "USD", "reporting currency (ISO 4217 code)")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendCSV, "ledger backend: csv or sqlite")
	cmd.Flags().BoolVar(&opts.git, "git", false, "track the ledger in git and commit after every import")

	return cmd
}

func runInit(out io.Writer, dir string, opts initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write pocketledger.yaml.
	cfg := config.Default(strings.ToUpper(opts.homeCurrency))
	cfg.Ledger.Backend = opts.backend
	cfg.Ledger.Path = config.DefaultLedgerPath(opts.backend)
	cfg.Git.AutoCommit = opts.git
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := seedAccounts(cfg, dir); err != nil {
		return err
	}

	// Raw statements stay out of history; the ledger is the record.
	gitignore := "import/*.csv\nimport/processed/\n*.db-journal\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !opts.git {
		fmt.Fprintf(out, "Initialized ledger at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	hash, err := gitops.CommitAll(dir, "init: new ledger", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledger at %s (%s)\n", dir, hash)
	return nil
}

// seedAccounts creates the ledger with the default accounts.
func seedAccounts(cfg *config.Config, dir string) error {
	store, err := ledger.Open(cfg.Ledger.Backend, cfg.LedgerPath(dir))
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer store.Close()

	for _, acct := range accounts.DefaultAccounts(cfg.HomeCurrency) {
		if err := store.AddAccount(acct); err != nil {
			return fmt.Errorf("adding account %s: %w", acct.ID, err)
		}
	}
	return nil
}
