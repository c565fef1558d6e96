package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/gitops"
	"github.com/pocketledger/pocketledger/internal/id"
	"github.com/pocketledger/pocketledger/internal/importer"
	"github.com/pocketledger/pocketledger/internal/importlog"
)

// previewLimit caps how many candidates are printed before commit.
const previewLimit = 20

type importOptions struct {
	repoDir  string
	account  string
	mappings []string
	dryRun   bool
	pending  bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement CSV",
		Long: `Import a bank statement CSV into the ledger.

Columns are mapped from the header automatically. Override a column with
--map, by index or header name: --map 2=debit --map "Paid In=credit".
Roles: date, merchant, amount, debit, credit, category, ignore.

Rows already in the ledger are skipped, so re-importing a statement is safe.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pending == (len(args) == 1) {
				return errors.New("give either a file or --pending")
			}

			ws, err := openWorkspace(cmd, opts.repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			return runImport(cmd.OutOrStdout(), ws, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoDir, "repo", ".", "ledger directory")
	cmd.Flags().StringVar(&opts.account, "account", "", "target account id (default: import.default_account, then the first account)")
	cmd.Flags().StringArrayVar(&opts.mappings, "map", nil, "column=role override (repeatable)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview without writing to the ledger")
	cmd.Flags().BoolVar(&opts.pending, "pending", false, "import every CSV in import/ and move it to import/processed/")

	return cmd
}

func runImport(out io.Writer, ws *workspace, args []string, opts importOptions) error {
	var files []importer.FileInfo
	if opts.pending {
		found, err := importer.Scan(ws.root)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Fprintln(out, "No statements in import/.")
			return nil
		}
		files = found
	} else {
		files = []importer.FileInfo{{Name: filepath.Base(args[0]), Path: args[0]}}
	}

	// A bad file does not stop the rest; whatever was committed is still
	// logged, moved and auto-committed before the errors are reported.
	var logged []importlog.Entry
	var imported []string
	var errs []error
	for _, f := range files {
		fmt.Fprintf(out, "== %s\n", f.Name)
		res, err := importFile(out, ws, f.Path, opts)
		if err != nil {
			ws.logger.Error("import failed", "file", f.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		if opts.dryRun {
			continue
		}

		logged = append(logged, importlog.Entry{
			Timestamp: time.Now().UTC(),
			File:      f.Name,
			AccountID: res.accountID,
			Imported:  res.Imported,
			Skipped:   res.Skipped,
			Failed:    len(res.Failed),
		})
		imported = append(imported, f.Name)

		if opts.pending && ws.cfg.Import.MoveProcessed {
			if err := importer.MarkProcessed(ws.root, f.Name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if opts.dryRun || len(logged) == 0 {
		return errors.Join(errs...)
	}
	if err := importlog.Append(ws.root, logged); err != nil {
		ws.logger.Warn("failed to write import log", "err", err)
	}
	if err := autoCommit(out, ws, imported); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type fileResult struct {
	*importer.CommitResult
	accountID string
}

// importFile runs one statement through a session: load, map, preview
// and (unless dry-run) commit.
func importFile(out io.Writer, ws *workspace, path string, opts importOptions) (*fileResult, error) {
	sess, err := importer.NewSession(ws.store, ws.store, id.UUID{}, ws.logger)
	if err != nil {
		return nil, err
	}

	account := opts.account
	if account == "" {
		account = ws.cfg.Import.DefaultAccount
	}
	if account != "" {
		if err := sess.SelectAccount(account); err != nil {
			return nil, err
		}
	}

	if err := sess.LoadFile(path); err != nil {
		return nil, err
	}
	for _, m := range opts.mappings {
		col, role, err := importer.ParseOverride(sess.Header(), m)
		if err != nil {
			return nil, err
		}
		if err := sess.SetMapping(col, role); err != nil {
			return nil, err
		}
	}
	printMapping(out, sess.Header(), sess.Mapping())

	preview, err := sess.Preview()
	if err != nil {
		if errors.Is(err, importer.ErrIncompleteMapping) {
			return nil, fmt.Errorf("%w; assign columns with --map column=role", err)
		}
		return nil, err
	}
	printPreview(out, preview)

	if opts.dryRun {
		fmt.Fprintln(out, "Dry run: nothing written.")
		return &fileResult{CommitResult: &importer.CommitResult{}, accountID: sess.AccountID()}, nil
	}

	res, err := sess.Commit()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Imported %d, skipped %d duplicates into %s\n", res.Imported, res.Skipped, sess.AccountID())
	for _, f := range res.Failed {
		fmt.Fprintf(out, "  failed %v\n", f)
	}
	return &fileResult{CommitResult: res, accountID: sess.AccountID()}, nil
}

func autoCommit(out io.Writer, ws *workspace, files []string) error {
	if !ws.cfg.Git.AutoCommit || len(files) == 0 {
		return nil
	}
	if !gitops.IsRepo(ws.root) {
		ws.logger.Warn("auto_commit is on but the ledger is not a git repository", "root", ws.root)
		return nil
	}

	msg := "import: " + strings.Join(files, ", ")
	hash, err := gitops.CommitAll(ws.root, msg, ws.cfg.Git.AuthorName, ws.cfg.Git.AuthorEmail)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed %s\n", hash)
	return nil
}

func printMapping(w io.Writer, header []string, mapping importer.ColumnMapping) {
	fmt.Fprintln(w, "Columns:")
	for i, h := range header {
		fmt.Fprintf(w, "  %2d %-24s %s\n", i, h, mapping.Role(i))
	}
}

func printPreview(w io.Writer, p *importer.Preview) {
	fmt.Fprintf(w, "%d new, %d already imported\n", len(p.Candidates), p.DuplicateCount)
	for i, c := range p.Candidates {
		if i == previewLimit {
			fmt.Fprintf(w, "  ... and %d more\n", len(p.Candidates)-previewLimit)
			break
		}
		fmt.Fprintf(w, "  %-10s %-32s %12s\n", c.Date, c.Merchant, c.Amount.StringFixed(2))
	}
}
