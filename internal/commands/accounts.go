package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/model"
)

func newAccountsCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			accts, err := ws.store.List()
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), accts)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "ledger directory")

	cmd.AddCommand(newAccountsAddCommand(&repoDir))
	return cmd
}

func newAccountsAddCommand(repoDir *string) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, *repoDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if currency == "" {
				currency = ws.cfg.HomeCurrency
			}
			acct := model.Account{
				ID:       args[0],
				Name:     args[1],
				Currency: strings.ToUpper(currency),
				Balance:  decimal.Zero,
			}
			if err := ws.store.AddAccount(acct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s (%s)\n", acct.ID, acct.Currency)
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "account currency (default: home currency)")
	return cmd
}

func printAccounts(w io.Writer, accts []model.Account) {
	if len(accts) == 0 {
		fmt.Fprintln(w, "No accounts.")
		return
	}
	fmt.Fprintf(w, "%-12s %-24s %-8s %14s\n", "ID", "NAME", "CURRENCY", "BALANCE")
	for _, a := range accts {
		fmt.Fprintf(w, "%-12s %-24s %-8s %14s\n", a.ID, a.Name, a.Currency, a.Balance.StringFixed(2))
	}
}
