package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/id"
	"github.com/pocketledger/pocketledger/internal/model"
)

// manualPrefix prefixes IDs of hand-entered transactions.
const manualPrefix = "manual"

func newTransactionsCommand() *cobra.Command {
	var repoDir string
	var account string
	var limit int

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List, add or delete transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			txns, err := ws.store.All()
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), filterTransactions(txns, account, limit))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "ledger directory")
	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent N (0 = all)")

	cmd.AddCommand(newTransactionsAddCommand(&repoDir))
	cmd.AddCommand(newTransactionsDeleteCommand(&repoDir))
	return cmd
}

type manualEntry struct {
	account  string
	date     string
	merchant string
	amount   string
	category string
	note     string
}

func newTransactionsAddCommand(repoDir *string) *cobra.Command {
	var e manualEntry

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction by hand",
		Long: `Record a transaction by hand. Amounts are signed: negative for
spending, positive for income. Manual entries carry no content hash, so
they never cause a statement row to be skipped as a duplicate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, *repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			txn, err := buildManual(ws, e)
			if err != nil {
				return err
			}
			if err := ws.store.Append(txn); err != nil {
				return err
			}
			ws.logger.Debug("manual transaction recorded", "id", txn.ID, "account", txn.AccountID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s %s\n", txn.ID, txn.Date, txn.Merchant, txn.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&e.account, "account", "", "account id (default: import.default_account, then the first account)")
	cmd.Flags().StringVar(&e.date, "date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&e.merchant, "merchant", "", "merchant or payee (required)")
	cmd.Flags().StringVar(&e.amount, "amount", "", "signed amount, e.g. -12.50 (required)")
	cmd.Flags().StringVar(&e.category, "category", model.DefaultCategory, "category")
	cmd.Flags().StringVar(&e.note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("merchant")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newTransactionsDeleteCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and reverse its balance change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, *repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// buildManual turns flag values into a hashless transaction with the next
// manual-NNNN ID.
func buildManual(ws *workspace, e manualEntry) (model.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(e.amount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", e.amount, err)
	}

	date := time.Now().Format("2006-01-02")
	if e.date != "" {
		d, err := time.Parse("2006-01-02", e.date)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", e.date)
		}
		date = d.Format("2006-01-02")
	}

	merchant := strings.TrimSpace(e.merchant)
	if merchant == "" {
		return model.Transaction{}, errors.New("merchant must not be empty")
	}

	category := strings.TrimSpace(e.category)
	if category == "" {
		category = model.DefaultCategory
	}

	account, err := resolveAccount(ws, e.account)
	if err != nil {
		return model.Transaction{}, err
	}

	existing, err := ws.store.All()
	if err != nil {
		return model.Transaction{}, err
	}
	ids := make([]string, len(existing))
	for i, t := range existing {
		ids[i] = t.ID
	}

	return model.Transaction{
		ID:        id.ResumeSequence(manualPrefix, ids).NewID(),
		AccountID: account,
		Date:      date,
		Merchant:  merchant,
		Amount:    amount,
		Category:  category,
		Note:      e.note,
	}, nil
}

// resolveAccount picks the flag value, then the configured default, then
// the first account.
func resolveAccount(ws *workspace, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if ws.cfg.Import.DefaultAccount != "" {
		return ws.cfg.Import.DefaultAccount, nil
	}
	accts, err := ws.store.List()
	if err != nil {
		return "", err
	}
	if len(accts) == 0 {
		return "", errors.New("no accounts; add one with `pocketledger accounts add`")
	}
	return accts[0].ID, nil
}

func filterTransactions(txns []model.Transaction, account string, limit int) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if account == "" || t.AccountID == account {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func printTransactions(w io.Writer, txns []model.Transaction) {
	if len(txns) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}
	fmt.Fprintf(w, "%-38s %-10s %-10s %-28s %12s  %s\n", "ID", "ACCOUNT", "DATE", "MERCHANT", "AMOUNT", "CATEGORY")
	for _, t := range txns {
		source := ""
		if !t.Imported() {
			source = " (manual)"
		}
		fmt.Fprintf(w, "%-38s %-10s %-10s %-28s %12s  %s%s\n",
			t.ID, t.AccountID, t.Date, t.Merchant, t.Amount.StringFixed(2), t.Category, source)
	}
}
